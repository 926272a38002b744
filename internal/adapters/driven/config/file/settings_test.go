package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/twinsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/twinsync/internal/core/domain"
)

func noEnv(string) string { return "" }

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolve_Defaults(t *testing.T) {
	s := Resolve(memory.NewConfigStore(), noEnv)

	assert.Equal(t, DriverSQLite, s.RelationalDriver)
	assert.Equal(t, ProviderChromem, s.VectorProvider)
	assert.Equal(t, domain.DefaultExpectedDimension, s.VectorDimension)
	assert.Equal(t, domain.DefaultBatchSize, s.BatchSize)
	assert.Equal(t, domain.DefaultBatchPause, s.BatchPause)
	assert.Equal(t, domain.DefaultTopK, s.HarnessTopK)
	assert.Equal(t, "portfolio.json", s.ProfilePath)
	assert.Equal(t, ".", s.ReportDir)
}

func TestResolve_FileValues(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set(KeyVectorProvider, "Memory"))
	require.NoError(t, store.Set(KeyBatchSize, int64(50)))
	require.NoError(t, store.Set(KeyBatchPauseMS, int64(0)))
	require.NoError(t, store.Set(KeyHarnessWorkers, int64(3)))

	s := Resolve(store, noEnv)

	assert.Equal(t, ProviderMemory, s.VectorProvider)
	assert.Equal(t, 50, s.BatchSize)
	assert.Equal(t, time.Duration(0), s.BatchPause)
	assert.Equal(t, 3, s.HarnessWorkers)
}

func TestResolve_EnvironmentOverrides(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set(KeyVectorURL, "https://file.example"))

	s := Resolve(store, envMap(map[string]string{
		EnvDatabaseURL: "postgres://localhost/portfolio",
		EnvVectorURL:   "https://env.example",
		EnvVectorToken: "tok",
		EnvProfilePath: "/tmp/profile.json",
		EnvRedisURL:    "localhost:6379",
	}))

	assert.Equal(t, DriverPostgres, s.RelationalDriver)
	assert.Equal(t, "postgres://localhost/portfolio", s.RelationalDSN)
	assert.Equal(t, "https://env.example", s.VectorURL)
	assert.Equal(t, ProviderUpstash, s.VectorProvider)
	assert.Equal(t, "tok", s.VectorToken)
	assert.Equal(t, "/tmp/profile.json", s.ProfilePath)
	assert.Equal(t, "localhost:6379", s.RedisAddr)
}

func TestSettings_DescribeMasksSecrets(t *testing.T) {
	s := Resolve(memory.NewConfigStore(), envMap(map[string]string{EnvVectorToken: "abcdefghijkl"}))

	rows := map[string]string{}
	for _, r := range s.Describe() {
		rows[r[0]] = r[1]
	}
	assert.Equal(t, "********ijkl", rows[KeyVectorToken])
	assert.Equal(t, "500", rows[KeyBatchPauseMS])
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "****", MaskSecret("short"))
	assert.Equal(t, "********6789", MaskSecret("0123456789"))
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("TWINSYNC_TEST_A=local\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("TWINSYNC_TEST_A=base\nTWINSYNC_TEST_B=base\n"), 0600))
	t.Cleanup(func() {
		os.Unsetenv("TWINSYNC_TEST_A")
		os.Unsetenv("TWINSYNC_TEST_B")
	})

	require.NoError(t, LoadEnvFiles(dir))

	assert.Equal(t, "local", os.Getenv("TWINSYNC_TEST_A"))
	assert.Equal(t, "base", os.Getenv("TWINSYNC_TEST_B"))
}

func TestLoadEnvFiles_NoFiles(t *testing.T) {
	assert.NoError(t, LoadEnvFiles(t.TempDir()))
}
