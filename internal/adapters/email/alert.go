package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var lockoutTemplate = template.Must(template.New("lockout").Parse(`<p>The admin account <strong>{{.Username}}</strong> was locked after {{.Attempts}} failed sign-in attempts.</p>
<p>It unlocks automatically at {{.Until}}.</p>`))

// LockoutAlert builds the message sent when an admin account is locked.
func LockoutAlert(to, username string, attempts int, until time.Time) (Message, error) {
	data := struct {
		Username string
		Attempts int
		Until    string
	}{username, attempts, until.UTC().Format("Jan 2, 2006 15:04 MST")}

	var buf bytes.Buffer
	if err := lockoutTemplate.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("render lockout alert: %w", err)
	}
	return Message{
		To:      []string{to},
		Subject: "Admin account locked: " + username,
		HTML:    buf.String(),
		Text: fmt.Sprintf("The admin account %s was locked after %d failed sign-in attempts. It unlocks automatically at %s.",
			username, attempts, data.Until),
	}, nil
}
