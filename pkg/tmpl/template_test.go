package tmpl_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lwmacct/261018-go-pkg-jinjafs/pkg/kconfig"
	"github.com/lwmacct/261018-go-pkg-jinjafs/pkg/tmpl"
)

func newEngine(t *testing.T, opts ...tmpl.Option) *tmpl.Engine {
	t.Helper()
	e, err := tmpl.NewEngine(opts...)
	require.NoError(t, err)
	return e
}

func TestEngine_Render(t *testing.T) {
	values := kconfig.Values{
		"CONFIG_A":       "1",
		"CONFIG_NAME":    `say "hi" <b>`,
		"CONFIG_EMPTY":   "",
		"INSTALL_PREFIX": "/usr/opensync",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "flattened key",
			template: "a={{ CONFIG_A }}",
			want:     "a=1",
		},
		{
			name:     "global mapping lookup",
			template: "a={{ CONFIG.CONFIG_A }}",
			want:     "a=1",
		},
		{
			name:     "synthetic install key",
			template: "{{ INSTALL_PREFIX }}/bin",
			want:     "/usr/opensync/bin",
		},
		{
			name:     "no html escaping",
			template: "{{ CONFIG_NAME }}",
			want:     `say "hi" <b>`,
		},
		{
			name:     "undefined renders empty",
			template: "[{{ CONFIG_MISSING }}]",
			want:     "[]",
		},
		{
			name:     "conditional on key",
			template: "{% if CONFIG_A == \"1\" %}on{% else %}off{% endif %}",
			want:     "on",
		},
		{
			name:     "plain text untouched",
			template: "line1\nline2\n",
			want:     "line1\nline2\n",
		},
	}

	e := newEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Render("test", tt.template, values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_RenderIteration(t *testing.T) {
	values := kconfig.Values{"CONFIG_B": "2", "CONFIG_A": "1"}

	got, err := newEngine(t).Render("loop", "{% for k, v in CONFIG sorted %}{{ k }}={{ v }};{% endfor %}", values)
	require.NoError(t, err)
	assert.Equal(t, "CONFIG_A=1;CONFIG_B=2;", got)
}

func TestEngine_CustomGlobal(t *testing.T) {
	e := newEngine(t, tmpl.WithGlobal("KCONFIG"))
	got, err := e.Render("g", "{{ KCONFIG.CONFIG_A }}|{{ CONFIG }}", kconfig.Values{"CONFIG_A": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x|", got)

	_, err = tmpl.NewEngine(tmpl.WithGlobal("not-valid"))
	assert.Error(t, err)
}

func TestEngine_InvalidIdentifierOnlyViaGlobal(t *testing.T) {
	values := kconfig.Values{"CONFIG_A": "1", "CONFIG_X-Y": "dash"}

	ctx := tmpl.NewContext(tmpl.DefaultGlobal, values)
	assert.Contains(t, ctx, "CONFIG_A")
	assert.NotContains(t, ctx, "CONFIG_X-Y")
	assert.Equal(t, map[string]string{"CONFIG_A": "1", "CONFIG_X-Y": "dash"}, ctx[tmpl.DefaultGlobal])

	got, err := newEngine(t).Render("dash", "{{ CONFIG_A }}", values)
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestEngine_Functions(t *testing.T) {
	values := kconfig.Values{"CONFIG_A": "1", "CONFIG_EMPTY": ""}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "coalesce skips empty",
			template: `{{ coalesce(CONFIG_EMPTY, CONFIG_A, "default") }}`,
			want:     "1",
		},
		{
			name:     "coalesce skips undefined",
			template: `{{ coalesce(CONFIG_MISSING, CONFIG_A) }}`,
			want:     "1",
		},
		{
			name:     "coalesce falls back",
			template: `{{ coalesce(CONFIG_EMPTY, "default") }}`,
			want:     "default",
		},
		{
			name:     "value existing key",
			template: `{{ value("CONFIG_A") }}`,
			want:     "1",
		},
		{
			name:     "value missing key with default",
			template: `{{ value("CONFIG_NOPE", "fallback") }}`,
			want:     "fallback",
		},
	}

	e := newEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Render("fn", tt.template, values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// =============================================================================
// 错误场景测试
// =============================================================================

func TestEngine_SyntaxError(t *testing.T) {
	tests := []struct {
		name     string
		template string
		line     int
	}{
		{
			name:     "unknown tag",
			template: "ok\nok\n{% bogus %}\n",
			line:     3,
		},
		{
			name:     "stray end tag",
			template: "{% endif %}",
			line:     1,
		},
	}

	e := newEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Render("etc/app.conf.jinja", tt.template, kconfig.Values{})
			require.Error(t, err)

			var se *tmpl.SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "etc/app.conf.jinja", se.File)
			assert.Equal(t, tt.line, se.Line)
			assert.NotEmpty(t, se.Message)
			assert.Contains(t, se.Error(), "etc/app.conf.jinja:")
		})
	}
}

func TestEngine_IncludeFromBaseDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "common.inc"), []byte("prefix={{ INSTALL_PREFIX }}"), 0o644))

	e := newEngine(t, tmpl.WithBaseDir(dir))
	got, err := e.Render("inc", `{% include "common.inc" %}`, kconfig.Values{"INSTALL_PREFIX": "/opt"})
	require.NoError(t, err)
	assert.Equal(t, "prefix=/opt", got)
}
