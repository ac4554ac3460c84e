package researcher

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"ai-researcher-be/pkg/scraper"
)

// getContextBySearch decomposes the query into sub-queries and gathers each
// one concurrently. The returned blocks are ordered by dispatch, not by
// completion, so downstream budgeting sees a stable input.
func (r *Researcher) getContextBySearch(ctx context.Context, query string) ([]ContentBlock, error) {
	subQueries, err := r.getSubQueries(ctx, query)
	if err != nil {
		return nil, err
	}
	subQueries = append(subQueries, query)
	r.subQueries = subQueries

	r.stream("logs", fmt.Sprintf("🧠 I will conduct my research based on the following queries: %v...", subQueries))

	blocks := make([]ContentBlock, len(subQueries))
	g, gctx := errgroup.WithContext(ctx)
	for i, subQuery := range subQueries {
		i, subQuery := i, subQuery
		g.Go(func() error {
			block, err := r.processSubQuery(gctx, subQuery)
			if err != nil {
				return err
			}
			blocks[i] = block
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}

// getContextByURLs skips search entirely and builds context from the caller's
// seed urls, ranked against the original query.
func (r *Researcher) getContextByURLs(ctx context.Context, urls []string) ([]ContentBlock, error) {
	admitted := r.admitNewURLs(urls)
	r.stream("logs", fmt.Sprintf("🧠 I will conduct my research based on the following urls: %v...", admitted))

	pages := r.deps.Scraper.Scrape(ctx, admitted)
	content, err := r.rankContent(ctx, r.params.Query, pages)
	if err != nil {
		return nil, err
	}
	return []ContentBlock{{SubQuery: r.params.Query, Content: content, URLs: admitted}}, nil
}

// processSubQuery runs the full gather pipeline for one sub-query: search,
// admit, scrape, rank. The progress message carrying the block's content is
// sent only after the block is fully assembled.
func (r *Researcher) processSubQuery(ctx context.Context, subQuery string) (ContentBlock, error) {
	r.stream("logs", fmt.Sprintf("\n🔎 Running research for '%s'...", subQuery))

	pages, admitted, err := r.scrapeSitesByQuery(ctx, subQuery)
	if err != nil {
		return ContentBlock{}, err
	}

	content, err := r.rankContent(ctx, subQuery, pages)
	if err != nil {
		return ContentBlock{}, err
	}

	r.stream("logs", fmt.Sprintf("📃 %s", content))
	return ContentBlock{SubQuery: subQuery, Content: content, URLs: admitted}, nil
}

// scrapeSitesByQuery searches for a sub-query and scrapes the urls no other
// gather has claimed yet. Zero admitted urls is not an error; the sub-query
// simply contributes nothing.
func (r *Researcher) scrapeSitesByQuery(ctx context.Context, subQuery string) ([]scraper.Page, []string, error) {
	results, err := r.deps.Retriever.Search(ctx, subQuery, r.params.Config.MaxSearchResultsPerQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("search for %q: %w", subQuery, err)
	}

	hrefs := make([]string, 0, len(results))
	for _, res := range results {
		hrefs = append(hrefs, res.Href)
	}
	admitted := r.admitNewURLs(hrefs)

	r.stream("logs", "🤔Researching for relevant information...\n")
	pages := r.deps.Scraper.Scrape(ctx, admitted)
	return pages, admitted, nil
}

func (r *Researcher) rankContent(ctx context.Context, query string, pages []scraper.Page) (string, error) {
	r.stream("logs", fmt.Sprintf("📃 Getting relevant content based on query: %s...", query))

	content, err := r.deps.Ranker.GetContext(ctx, query, pages, maxRankResults)
	if err != nil {
		return "", fmt.Errorf("rank content for %q: %w", query, err)
	}
	return content, nil
}

func (r *Researcher) admitNewURLs(urls []string) []string {
	admitted := r.visited.AdmitNew(urls)
	for _, url := range admitted {
		r.stream("logs", fmt.Sprintf("✅ Adding source url to research: %s\n", url))
	}
	return admitted
}
