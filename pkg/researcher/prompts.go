package researcher

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	defaultAgent = "Default Agent"
	defaultRole  = "You are an AI critical thinker research assistant. Your sole purpose is to write well written, critically acclaimed, objective and structured reports on given text."
)

func autoAgentInstructions() string {
	return `This task involves researching a given topic, regardless of its complexity or the availability of a definitive answer. The research is conducted by a specific server, defined by its type and role, with each server requiring distinct instructions.
The server is determined by the field of the topic and the specific name of the server that could be utilized to research the topic provided. Each server type is associated with a corresponding emoji.

examples:
task: "should I invest in apple stocks?"
response:
{
	"server": "💰 Finance Agent",
	"agent_role_prompt": "You are a seasoned finance analyst AI assistant. Your primary goal is to compose comprehensive, astute, impartial, and methodically arranged financial reports based on provided data and trends."
}
task: "what are the most interesting sites in Tel Aviv?"
response:
{
	"server": "🌍 Travel Agent",
	"agent_role_prompt": "You are a world-travelled AI tour guide assistant. Your main purpose is to draft engaging, insightful, unbiased, and well-structured travel reports on given locations, including history, attractions, and cultural insights."
}
task: "could you provide an analysis of the latest trends in renewable energy?"
response:
{
	"server": "🔬 Science Agent",
	"agent_role_prompt": "You are a scientific research AI assistant. Your central function is to produce precise, evidence-based, impartial, and clearly organized reports on scientific topics using the provided information."
}

You must respond with ONLY a JSON object in the format shown above. No other text.`
}

func generateSearchQueriesPrompt(query string, maxQueries int) string {
	return fmt.Sprintf(
		`Write %d google search queries to search online that form an objective opinion from the following: "%s"
You must respond with a list of strings in the following format: ["query 1", "query 2", "query 3"].`,
		maxQueries, query)
}

func generateReportPrompt(query, context string, totalWords int) string {
	return fmt.Sprintf(`Information: """%s"""

Using the above information, answer the following query or task: "%s" in a detailed report.
The report should focus on the answer to the query, should be well structured, informative, in depth and comprehensive, with facts and numbers if available and a minimum of %d words.
You should strive to write the report as long as you can using all relevant and necessary information provided.
You must write the report with markdown syntax.
Use an unbiased and journalistic tone.
You MUST determine your own concrete and valid opinion based on the given information. Do NOT defer to general and meaningless conclusions.
You MUST write all used source urls at the end of the report as references, and make sure to not add duplicated sources, but only one reference for each.
You must write the report in APA format.`, context, query, totalWords)
}

func generateResourceReportPrompt(query, context string, totalWords int) string {
	return fmt.Sprintf(`Information: """%s"""

Based on the above information, generate a bibliography recommendation report for the following query or task: "%s".
The report should provide a detailed analysis of each recommended resource, explaining how each source can contribute to finding answers to the research question.
Focus on the relevance, reliability, and significance of each source.
Ensure the report is well-structured, informative, in-depth, and follows Markdown syntax.
Include relevant facts, figures, and numbers whenever available.
The report should have a minimum length of %d words.`, context, query, totalWords)
}

func generateOutlineReportPrompt(query, context string, totalWords int) string {
	return fmt.Sprintf(`Information: """%s"""

Using the above information, generate an outline for a research report in Markdown syntax for the following query or task: "%s".
The outline should provide a well-structured framework for the research report, including the main sections, subsections, and key points to be covered.
The research report should be detailed, informative, in-depth, and a minimum of %d words.
Use appropriate Markdown syntax to format the outline and ensure readability.`, context, query, totalWords)
}

// reportPromptByType resolves the writing prompt for a report type. Unknown
// types (including custom_report, which only swaps the agent role) fall back
// to the standard research report prompt.
func reportPromptByType(reportType, query, context string, totalWords int) string {
	switch reportType {
	case "resource_report":
		return generateResourceReportPrompt(query, context, totalWords)
	case "outline_report":
		return generateOutlineReportPrompt(query, context, totalWords)
	default:
		return generateReportPrompt(query, context, totalWords)
	}
}

// stripCodeFences removes a markdown code fence wrapper from a model reply.
func stripCodeFences(s string) string {
	out := strings.TrimSpace(s)
	out = strings.TrimPrefix(out, "```json")
	out = strings.TrimPrefix(out, "```")
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}

type agentResponse struct {
	Server          string `json:"server"`
	AgentRolePrompt string `json:"agent_role_prompt"`
}

func parseAgentResponse(raw string) (string, string, error) {
	cleaned := stripCodeFences(raw)

	var parsed agentResponse
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return "", "", fmt.Errorf("parse agent response: %w | raw: %s", err, cleaned)
	}
	if parsed.Server == "" || parsed.AgentRolePrompt == "" {
		return "", "", fmt.Errorf("agent response missing fields: %s", cleaned)
	}
	return parsed.Server, parsed.AgentRolePrompt, nil
}

func parseSubQueries(raw string) ([]string, error) {
	cleaned := stripCodeFences(raw)

	// Models tend to wrap the list in prose; cut down to the bracketed part.
	if start, end := strings.Index(cleaned, "["), strings.LastIndex(cleaned, "]"); start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	var queries []string
	if err := json.Unmarshal([]byte(cleaned), &queries); err != nil {
		return nil, fmt.Errorf("parse sub queries: %w | raw: %s", err, cleaned)
	}

	out := make([]string, 0, len(queries))
	for _, q := range queries {
		if trimmed := strings.TrimSpace(q); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no sub queries in response: %s", cleaned)
	}
	return out, nil
}
