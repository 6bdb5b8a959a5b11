package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freebsdly/ops-console/pkg/taxonomy"
)

func newResolver(t *testing.T, overrides map[string]TabMeta) *TaxonomyResolver {
	t.Helper()
	sp, err := taxonomy.NewStaticProvider(taxonomy.BuiltInModules())
	require.NoError(t, err)
	return NewTaxonomyResolver(sp, overrides)
}

func TestResolveTabMetadata_ExactTaxonomyEntry(t *testing.T) {
	r := newResolver(t, nil)

	meta := r.ResolveTabMetadata("/workbench/alerts?severity=high")
	assert.Equal(t, TabMeta{Key: "alerts", Label: "Alerts", Icon: "bell"}, meta)
}

func TestResolveTabMetadata_PrefixFallback(t *testing.T) {
	r := newResolver(t, nil)

	meta := r.ResolveTabMetadata("/configuration/resources/hosts/42/edit")
	assert.Equal(t, "hosts", meta.Key)
}

func TestResolveTabMetadata_Override(t *testing.T) {
	r := newResolver(t, map[string]TabMeta{
		"/workbench/alerts": {Key: "alert-center", Label: "Alert Center", Icon: "bell"},
	})

	meta := r.ResolveTabMetadata("/workbench/alerts")
	assert.Equal(t, "alert-center", meta.Key)
}

func TestResolveTabMetadata_SyntheticFallback(t *testing.T) {
	r := newResolver(t, nil)

	meta := r.ResolveTabMetadata("/totally/unmapped/deploy-history")
	assert.Equal(t, "deploy-history", meta.Key)
	assert.Equal(t, "Deploy History", meta.Label)

	// Determinism: same path, same key.
	again := r.ResolveTabMetadata("/totally/unmapped/deploy-history")
	assert.Equal(t, meta, again)
}

func TestSynthetic_Root(t *testing.T) {
	meta := Synthetic("/")
	assert.Equal(t, "home", meta.Key)
}
