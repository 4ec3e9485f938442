package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/weft/internal/engine"
	"github.com/roach88/weft/internal/host"
	"github.com/roach88/weft/internal/node"
	tu "github.com/roach88/weft/internal/testutil"
)

func TestCollector_RecordsEngineActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	mem := host.NewMemory()
	container := mem.Container("main")
	r := engine.New(mem,
		engine.WithLogger(tu.DiscardLogger()),
		engine.WithIDGenerator(tu.NewFixedIDGenerator("")),
		engine.WithMetrics(c),
	)

	tree := node.H("ul", nil, node.H("li", nil, "a"), node.H("li", nil, "b"))
	r.Render(tree, container)
	require.NoError(t, r.Tick(tu.NewUnitDeadline(2)))
	r.Render(tree, container) // abandons the first pass
	require.NoError(t, r.Flush())

	// 2 units before the restart, then root, ul, li, "a", li, "b"
	assert.Equal(t, 8.0, testutil.ToFloat64(c.units))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.yields))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.abandoned))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.commits))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.effects.WithLabelValues("placement")))

	mem.FailNext(host.OpCreate, errors.New("boom"))
	r.Render(node.H("p", nil), container)
	require.Error(t, r.Flush())
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failures.WithLabelValues(string(engine.ErrCodeHostFailure))))

	expected := `
# HELP weft_scheduler_commits_total Passes committed to the host
# TYPE weft_scheduler_commits_total counter
weft_scheduler_commits_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "weft_scheduler_commits_total"))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}
