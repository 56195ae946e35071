package verification

import (
	"bytes"
	"html/template"
	"time"
)

const codeMessageSubject = "Your Verification Code"

type codeMessageParams struct {
	Code    string
	Minutes int
}

var codeMessageTmpl = template.Must(template.New("code").Parse(`<h2>Your Verification Code</h2>
<p>Your verification code is: <strong>{{.Code}}</strong></p>
<p>This code will expire in {{.Minutes}} minutes.</p>
<p>If you did not request a code, you can ignore this email.</p>
`))

func renderCodeMessage(code string, ttl time.Duration) (string, error) {
	var buf bytes.Buffer
	err := codeMessageTmpl.Execute(&buf, codeMessageParams{Code: code, Minutes: int(ttl.Minutes())})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
