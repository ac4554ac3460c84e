package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-researcher-be/internal/model"
	"ai-researcher-be/internal/repository/implementation"
	"ai-researcher-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	// Archive schema must be migratable against the live database
	err = gormDB.AutoMigrate(&model.ResearchRun{})
	require.NoError(t, err)
	t.Log("Successfully connected to DB and migrated the research_runs table")

	repo := implementation.NewResearchRunRepository(gormDB)
	ctx := context.Background()

	t.Run("Create And Read Back A Run", func(t *testing.T) {
		runID := uuid.New()
		run := &model.ResearchRun{
			ID:               runID,
			Query:            "integration test query " + runID.String(),
			ReportType:       "research_report",
			Agent:            "🔬 Science Agent",
			Report:           "# Integration\n\nA short archived report.",
			Model:            "llama3",
			PromptTokens:     1234,
			CompletionTokens: 567,
			SourceURLs:       datatypes.NewJSONSlice([]string{"https://a.example", "https://b.example"}),
			SubQueries:       datatypes.NewJSONSlice([]string{"sub one", "sub two"}),
			PDFPath:          "outputs/" + runID.String() + ".pdf",
			DocxPath:         "outputs/" + runID.String() + ".docx",
			DurationMs:       4200,
			CreatedAt:        time.Now(),
		}

		err := repo.Create(ctx, run)
		require.NoError(t, err)
		defer gormDB.Delete(&model.ResearchRun{}, "id = ?", runID)

		got, err := repo.GetByID(ctx, runID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, run.Query, got.Query)
		assert.Equal(t, run.Agent, got.Agent)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, []string(got.SourceURLs))
		assert.Equal(t, []string{"sub one", "sub two"}, []string(got.SubQueries))
		t.Logf("Run archived and read back: %s", runID)
	})

	t.Run("List Includes The New Run", func(t *testing.T) {
		runID := uuid.New()
		run := &model.ResearchRun{
			ID:         runID,
			Query:      "list test query " + runID.String(),
			ReportType: "outline_report",
			CreatedAt:  time.Now(),
		}
		err := repo.Create(ctx, run)
		require.NoError(t, err)
		defer gormDB.Delete(&model.ResearchRun{}, "id = ?", runID)

		runs, total, err := repo.List(ctx, 10, 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, total, int64(1))

		found := false
		for _, r := range runs {
			if r.ID == runID {
				found = true
				break
			}
		}
		assert.True(t, found, "newest run should appear on the first page")
		t.Logf("Run count: %d", total)
	})

	t.Run("Unknown Id Yields No Row", func(t *testing.T) {
		got, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
