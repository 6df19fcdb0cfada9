package easyinstall

type bsdRegistrar struct{ RegistrarEnv }

func (r *bsdRegistrar) Platform() Platform { return PlatformBSD }

// Register replaces the rc.d script with a fresh root-owned copy, mode 555.
func (r *bsdRegistrar) Register() error {
	if !r.consent() {
		return nil
	}

	rcd := r.Paths.RCDScript
	// Preliminary clean up
	if err := r.sudo("rm -f " + shellQuote(rcd)); err != nil {
		return err
	}

	tmp, err := r.renderTemp(bsdTemplate, productName+".rc")
	if err != nil {
		return err
	}
	return r.sudo(
		"cp "+shellQuote(tmp)+" "+shellQuote(rcd),
		"chown root "+shellQuote(rcd),
		"chmod 555 "+shellQuote(rcd),
	)
}
