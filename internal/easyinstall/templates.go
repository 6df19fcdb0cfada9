package easyinstall

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
)

// TemplateData holds every field a service template may reference.
type TemplateData struct {
	Prefix  string // installation prefix
	Daemon  string // path of the server binary
	PidFile string // file the daemon writes its pid to
	VarDir  string // <prefix>/var, the working state directory
	Label   string // launchd label
	Name    string // short service name
}

// NewTemplateData derives the per-prefix paths.
func NewTemplateData(prefix string) TemplateData {
	return TemplateData{
		Prefix:  prefix,
		Daemon:  filepath.Join(prefix, "sbin", productName),
		PidFile: filepath.Join(prefix, "var", "run", productName+".pid"),
		VarDir:  filepath.Join(prefix, "var"),
		Label:   "org.cherokee.webserver",
		Name:    productName,
	}
}

// ServiceTemplate is an init-system artifact template for one platform.
type ServiceTemplate struct {
	Platform string
	tmpl     *template.Template
}

// NewServiceTemplate parses text and renders it once against a probe value so
// that references to unknown fields fail here instead of during registration.
func NewServiceTemplate(platform, text string) (*ServiceTemplate, error) {
	tmpl, err := template.New(platform).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s template: %w", platform, err)
	}
	st := &ServiceTemplate{Platform: platform, tmpl: tmpl}
	if _, err := st.Render(NewTemplateData("/probe")); err != nil {
		return nil, err
	}
	return st, nil
}

func mustServiceTemplate(platform, text string) *ServiceTemplate {
	st, err := NewServiceTemplate(platform, text)
	if err != nil {
		panic(err)
	}
	return st
}

// Render fills the template. An empty prefix is rejected.
func (t *ServiceTemplate) Render(data TemplateData) (string, error) {
	if data.Prefix == "" {
		return "", errors.New("rendering " + t.Platform + " template: empty prefix")
	}
	var b strings.Builder
	if err := t.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s template: %w", t.Platform, err)
	}
	return b.String(), nil
}

var (
	launchdTemplate = mustServiceTemplate("darwin", launchdPlist)
	smfTemplate     = mustServiceTemplate("sunos", smfManifest)
	bsdTemplate     = mustServiceTemplate("bsd", bsdRCScript)
	sysvTemplate    = mustServiceTemplate("sysv-initd", sysvInitScript)
)

const launchdPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple Computer//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
  <key>Label</key><string>{{.Label}}</string>
  <key>RunAtLoad</key><true/>
  <key>ProgramArguments</key><array>
     <string>{{.Daemon}}</string>
  </array>
  <key>UserName</key>
  <string>root</string>
</dict>
</plist>
`

const smfManifest = `<?xml version="1.0"?>
<!DOCTYPE service_bundle SYSTEM "/usr/share/lib/xml/dtd/service_bundle.dtd.1">

<service_bundle type='manifest' name='{{.Name}}'>
  <service name='network/http' type='service' version='1'>
    <instance name='{{.Name}}' enabled='true'>

      <dependency name='loopback' grouping='require_all' restart_on='error' type='service'>
        <service_fmri value='svc:/network/loopback:default'/>
      </dependency>

      <dependency name='physical' grouping='optional_all' restart_on='error' type='service'>
        <service_fmri value='svc:/network/physical:default'/>
      </dependency>

      <method_context working_directory='{{.VarDir}}'/>

      <exec_method type='method' name='start' exec='{{.Daemon}} -d' timeout_seconds='60'>
        <method_context><method_credential user='root' group='root' /></method_context>
      </exec_method>

      <exec_method type='method' name='stop' exec='kill ` + "`cat {{.PidFile}}`" + `' timeout_seconds='60'>
        <method_context><method_credential user='root' group='root' /></method_context>
      </exec_method>

      <exec_method type='method' name='refresh' exec='kill -HUP ` + "`cat {{.PidFile}}`" + `' timeout_seconds='60'>
        <method_context><method_credential user='root' group='root' /></method_context>
      </exec_method>

      <property_group name='startd' type='framework'>
        <propval name='duration' type='astring' value='contract'/>
        <propval name='ignore_error' type='astring' value='core,signal' />
      </property_group>

    </instance>

    <template>
      <common_name><loctext xml:lang='C'>Advanced and Fast Web Server</loctext></common_name>
      <documentation>
        <doc_link name='www.cherokee-project.com' uri='http://www.cherokee-project.com/doc/' />
      </documentation>
    </template>
  </service>
</service_bundle>
`

const bsdRCScript = `#!/bin/sh

. /etc/rc.subr

name="{{.Name}}"
rcvar="` + "`set_rcvar`" + `"
command="{{.Daemon}}"
pidfile="{{.PidFile}}"

load_rc_config $name
command_args="-d"

run_rc_command "$1"
`

const sysvInitScript = `#!/bin/sh -e

PATH=/sbin:/bin:/usr/sbin:/usr/bin:{{.Prefix}}/sbin:{{.Prefix}}/bin

DAEMON={{.Daemon}}
NAME={{.Name}}
PIDFILE={{.PidFile}}

set -e
test -x $DAEMON || exit 0

case "$1" in
start)
   $DAEMON -d
   ;;

stop)
   if [ -f $PIDFILE ]; then
        PID=$(cat $PIDFILE)
        kill $PID
   fi
   ;;

restart)
   $0 stop
   sleep 1
   $0 start
   ;;

reload|force-reload)
   printf "Reloading web server: %s\t" "$NAME"
   if [ -f $PIDFILE ]; then
        PID=$(cat $PIDFILE)
        if ps p $PID | grep $NAME >/dev/null 2>&1; then
           kill -HUP $PID
        else
           echo "PID present, but $NAME not found at PID $PID - Cannot reload"
           exit 1
        fi
   else
        echo "No PID file present for $NAME - Cannot reload"
        exit 1
   fi
   ;;

status)
   printf "%s web server status:\t" "$NAME"
   if [ -e $PIDFILE ] ; then
       PROCNAME=$(ps -p $(cat $PIDFILE) -o comm=)
       if [ "x$PROCNAME" = "x" ]; then
            printf "Not running, but PID file present \t"
       else
            if [ "$PROCNAME" = "$NAME" ]; then
                 printf "Running\t"
            else
                 printf "PID file points to process '%s', not '%s'\t" "$PROCNAME" "$NAME"
            fi
       fi
   else
       if PID=$(pidofproc $NAME); then
            printf "Running (PID %s), but PIDFILE not present\t" "$PID"
       else
            printf "Not running\t"
       fi
   fi
   ;;

*)
   N=/etc/init.d/$NAME
   echo "Usage: $N {start|stop|restart|reload|force-reload|status}" >&2
   exit 1
   ;;
esac

if [ $? = 0 ]; then
    echo .
    exit 0
else
    echo failed
    exit 1
fi
exit 0
`
