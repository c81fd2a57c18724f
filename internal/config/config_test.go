package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.AI.Model)
	assert.Equal(t, "docfill.db", cfg.Storage.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "soffice", cfg.Convert.Soffice)
	assert.Equal(t, []string{"docx", "pdf"}, cfg.Convert.Formats)
	assert.Equal(t, "free", cfg.Access.DefaultPlan)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docfill.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ai:
  provider: openai
  model: gpt-4o-mini
  base_url: http://localhost:11434/v1
storage:
  path: /var/lib/docfill/docfill.db
convert:
  formats: [pdf]
access:
  default_plan: basic
  user_plans:
    captain: premium
  plans:
    basic:
      name: basic
      max_templates: 10
      max_documents_per_month: 50
      can_upload_templates: true
      can_edit_templates: true
      can_process_documents: true
vessels:
  registry_path: fleet.yaml
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, "http://localhost:11434/v1", cfg.AI.BaseURL)
	assert.Equal(t, "/var/lib/docfill/docfill.db", cfg.Storage.Path)
	assert.Equal(t, []string{"pdf"}, cfg.Convert.Formats)
	assert.Equal(t, "basic", cfg.Access.DefaultPlan)
	assert.Equal(t, "premium", cfg.Access.UserPlans["captain"])
	assert.Equal(t, "fleet.yaml", cfg.Vessels.RegistryPath)

	plan, ok := cfg.Access.Plans["basic"]
	require.True(t, ok)
	assert.Equal(t, 10, plan.MaxTemplates)
	assert.Equal(t, 50, plan.MaxDocumentsMonth)
	assert.True(t, plan.CanProcessDocuments)
	assert.False(t, plan.CanDeleteTemplates)

	// Untouched sections keep their defaults.
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "soffice", cfg.Convert.Soffice)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DOCFILL_API_KEY", "sk-test")
	t.Setenv("DOCFILL_AI_PROVIDER", "openai")
	t.Setenv("DOCFILL_DB", "override.db")
	t.Setenv("DOCFILL_DEFAULT_PLAN", "enterprise")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.AI.APIKey)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "override.db", cfg.Storage.Path)
	assert.Equal(t, "enterprise", cfg.Access.DefaultPlan)
}

func TestLoadInvalidTimeout(t *testing.T) {
	t.Setenv("DOCFILL_AI_TIMEOUT_SECONDS", "soon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOCFILL_AI_TIMEOUT_SECONDS")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai: ["), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}
