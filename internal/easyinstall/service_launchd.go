package easyinstall

import "path/filepath"

type launchdRegistrar struct{ RegistrarEnv }

func (r *launchdRegistrar) Platform() Platform { return PlatformDarwin }

// Register installs the plist into the prefix and reloads it through launchctl.
func (r *launchdRegistrar) Register() error {
	if !r.consent() {
		return nil
	}

	tmp, err := r.renderTemp(launchdTemplate, "launchd-cherokee.plist")
	if err != nil {
		return err
	}
	plist := filepath.Join(r.Config.Prefix, "launchd-cherokee.plist")
	label := NewTemplateData(r.Config.Prefix).Label

	return r.sudo(
		"cp "+shellQuote(tmp)+" "+shellQuote(plist),
		"chown root "+shellQuote(plist),
		"chgrp admin "+shellQuote(plist),
		"launchctl unload -w "+shellQuote(plist),
		"launchctl load -w "+shellQuote(plist),
		"launchctl start "+label,
	)
}
