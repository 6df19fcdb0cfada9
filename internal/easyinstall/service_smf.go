package easyinstall

import (
	"os"

	"golang.org/x/sys/unix"
)

type smfRegistrar struct{ RegistrarEnv }

func (r *smfRegistrar) Platform() Platform { return PlatformSolaris }

// smfPresent probes svc.configd's repository door: it must be readable and
// must not be a plain file.
func smfPresent(door string) bool {
	if unix.Access(door, unix.R_OK) != nil {
		return false
	}
	info, err := os.Stat(door)
	return err == nil && !info.Mode().IsRegular()
}

// Register copies the manifest into place and, when SMF is running, imports and enables it.
func (r *smfRegistrar) Register() error {
	if !r.consent() {
		return nil
	}

	tmp, err := r.renderTemp(smfTemplate, "http-cherokee.xml")
	if err != nil {
		return err
	}
	xml := r.Paths.SMFManifest

	if err := r.sudo(
		"cp "+shellQuote(tmp)+" "+shellQuote(xml),
		"chown root "+shellQuote(xml),
		"chgrp sys "+shellQuote(xml),
	); err != nil {
		return err
	}

	if !smfPresent(r.Paths.RepositoryDoor) {
		cPrintln(colInfo, "INFO: Skipping SVC, SMF not present")
		return nil
	}
	return r.sudo(
		"/usr/sbin/svccfg import "+shellQuote(xml),
		"/usr/sbin/svcadm enable svc:/network/http:"+productName,
	)
}
