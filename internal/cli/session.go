package cli

import (
	"github.com/rs/zerolog/log"

	"github.com/nhle/mailtriage/internal/config"
	"github.com/nhle/mailtriage/internal/mail"
	"github.com/nhle/mailtriage/internal/session"
)

// openSession resolves configuration, connects to the mailbox, and
// builds the session every mailbox command runs against. The returned
// cleanup logs out of the server.
func openSession(opts *rootOptions) (*session.Session, func(), error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	client, err := mail.Dial(mail.Options{
		Host:     cfg.Server,
		Port:     cfg.IMAPPort,
		Username: cfg.LoginUsername(),
		Password: cfg.Password,
		StartTLS: cfg.StartTLS,
		Insecure: cfg.Insecure,
	})
	if err != nil {
		return nil, nil, err
	}

	sender := mail.NewSMTPSender(mail.SMTPOptions{
		Host:        cfg.SMTPServer,
		Port:        cfg.SMTPPort,
		Username:    cfg.LoginUsername(),
		Password:    cfg.Password,
		ImplicitTLS: cfg.SMTPImplicitTLS,
		Insecure:    cfg.Insecure,
	})

	sess := session.New(client, sender, cfg.Address, log.Logger)
	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Debug().Err(err).Msg("closing IMAP connection")
		}
	}

	return sess, cleanup, nil
}
