package mail

import (
	"bytes"
	"html/template"
)

var verificationTmpl = template.Must(template.New("verify").Parse(`<h1>Welcome to {{.App}}</h1>
<p>Hi {{.Username}},</p>
<p>Thank you for registering at {{.App}}.</p>
<p>Please click this <a href="{{.Link}}">link</a> to verify your email.</p>
<p>If you did not sign up, you can safely ignore this email.</p>
`))

var resetTmpl = template.Must(template.New("reset").Parse(`<h1>Reset your {{.App}} password</h1>
<p>Please click this <a href="{{.Link}}">link</a> to reset your password.</p>
<p>The link expires in {{.ValidFor}}. If you did not ask for a reset, you can safely ignore this email.</p>
`))

type templateData struct {
	App      string
	Username string
	Link     string
	ValidFor string
}

// VerificationEmail renders the signup verification message.
func VerificationEmail(app, to, username, link string) (Message, error) {
	body, err := render(verificationTmpl, templateData{App: app, Username: username, Link: link})
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{to}, Subject: "Verify Your Email", HTML: body}, nil
}

// PasswordResetEmail renders the password reset message. validFor is shown
// to the user as-is, e.g. "1 hour".
func PasswordResetEmail(app, to, link, validFor string) (Message, error) {
	body, err := render(resetTmpl, templateData{App: app, Link: link, ValidFor: validFor})
	if err != nil {
		return Message{}, err
	}
	return Message{To: []string{to}, Subject: "Reset Your Password", HTML: body}, nil
}

func render(t *template.Template, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
