package easyinstall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplateData(t *testing.T) {
	d := NewTemplateData("/opt/cherokee")
	assert.Equal(t, "/opt/cherokee/sbin/cherokee", d.Daemon)
	assert.Equal(t, "/opt/cherokee/var/run/cherokee.pid", d.PidFile)
	assert.Equal(t, "/opt/cherokee/var", d.VarDir)
	assert.Equal(t, "cherokee", d.Name)
}

func TestServiceTemplatesRender(t *testing.T) {
	data := NewTemplateData("/opt/cherokee-dev")
	for _, tmpl := range []*ServiceTemplate{launchdTemplate, smfTemplate, bsdTemplate, sysvTemplate} {
		t.Run(tmpl.Platform, func(t *testing.T) {
			out, err := tmpl.Render(data)
			require.NoError(t, err)
			assert.Contains(t, out, "/opt/cherokee-dev/sbin/cherokee")
			assert.NotContains(t, out, "{{")
		})
	}
}

func TestServiceTemplateDetails(t *testing.T) {
	data := NewTemplateData("/opt/cherokee")

	out, err := sysvTemplate.Render(data)
	require.NoError(t, err)
	assert.Contains(t, out, "PIDFILE=/opt/cherokee/var/run/cherokee.pid")
	assert.Contains(t, out, "PATH=/sbin:/bin:/usr/sbin:/usr/bin:/opt/cherokee/sbin:/opt/cherokee/bin")

	out, err = smfTemplate.Render(data)
	require.NoError(t, err)
	assert.Contains(t, out, "kill `cat /opt/cherokee/var/run/cherokee.pid`")
	assert.Contains(t, out, "working_directory='/opt/cherokee/var'")

	out, err = bsdTemplate.Render(data)
	require.NoError(t, err)
	assert.Contains(t, out, "rcvar=\"`set_rcvar`\"")

	out, err = launchdTemplate.Render(data)
	require.NoError(t, err)
	assert.Contains(t, out, "<string>org.cherokee.webserver</string>")
}

func TestNewServiceTemplateRejectsUnknownField(t *testing.T) {
	_, err := NewServiceTemplate("broken", "exec {{.Deamon}}")
	assert.Error(t, err)
}

func TestNewServiceTemplateRejectsBadSyntax(t *testing.T) {
	_, err := NewServiceTemplate("broken", "exec {{.Daemon")
	assert.Error(t, err)
}

func TestRenderRejectsEmptyPrefix(t *testing.T) {
	_, err := sysvTemplate.Render(TemplateData{})
	assert.Error(t, err)
}
