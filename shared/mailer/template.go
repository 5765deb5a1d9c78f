package mailer

import (
	"html/template"
	"strings"
	"time"
)

const verificationEmailTemplate = `<html>
  <head>
    <meta charset="utf-8" />
    <title>Email Confirmation</title>
  </head>
  <body style="font-family: 'Poppins', Arial, sans-serif">
    <table width="100%" border="0" cellspacing="0" cellpadding="0">
      <tr>
        <td align="center" style="padding: 20px">
          <table width="600" border="0" cellspacing="0" cellpadding="0"
                 style="border-collapse: collapse; border: 1px solid #cccccc">
            <tr>
              <td style="background-color: #e50eded3; padding: 40px; text-align: center; color: white; font-size: 24px">
                Verify Your E-mail Address
              </td>
            </tr>
            <tr>
              <td style="padding: 40px; text-align: left; font-size: 16px; line-height: 1.6">
                Hello, {{.Name}} <br />
                We are excited to have you on board. <br />
                <br />
                To start exploring the platform, please verify your email address
                using the button below and the code <strong>{{.Code}}</strong>.<br />
                This link will expire in 1 hour. <br />
              </td>
            </tr>
            <tr>
              <td style="padding: 0px 40px; text-align: center">
                <a href="{{.Link}}"
                   style="background-color: #e50eded3; color: #ffffff; text-decoration: none; font-weight: bold; font-size: 24px; padding: 10px; border-radius: 5px; display: block">
                  Verify Email
                </a>
              </td>
            </tr>
            <tr>
              <td style="background-color: #e50eded3; padding: 40px; text-align: center; color: white; font-size: 14px">
                Copyright &copy; {{.Year}} Task Manager
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>`

const passwordResetEmailTemplate = `<html>
  <head>
    <meta charset="utf-8" />
    <title>Password Reset</title>
  </head>
  <body style="font-family: 'Poppins', Arial, sans-serif">
    <table width="100%" border="0" cellspacing="0" cellpadding="0">
      <tr>
        <td align="center" style="padding: 20px">
          <table width="600" border="0" cellspacing="0" cellpadding="0"
                 style="border-collapse: collapse; border: 1px solid #cccccc">
            <tr>
              <td style="background-color: #e50eded3; padding: 40px; text-align: center; color: white; font-size: 24px">
                Reset Your Password
              </td>
            </tr>
            <tr>
              <td style="padding: 40px; text-align: left; font-size: 16px; line-height: 1.6">
                Hello, {{.Name}} <br />
                We received a request to reset the password for your account. <br />
                <br />
                If you made this request, click the button below to create a new
                password. This link will expire in 1 hour. <br />
                If you did not request a password reset, you can safely ignore
                this email. <br />
              </td>
            </tr>
            <tr>
              <td style="padding: 0px 40px; text-align: center">
                <a href="{{.Link}}"
                   style="background-color: #e50eded3; color: #ffffff; text-decoration: none; font-weight: bold; font-size: 24px; padding: 10px; border-radius: 5px; display: block">
                  Reset Password
                </a>
              </td>
            </tr>
            <tr>
              <td style="background-color: #e50eded3; padding: 40px; text-align: center; color: white; font-size: 14px">
                Copyright &copy; {{.Year}} Task Manager
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>`

var (
	verificationTmpl  = template.Must(template.New("verification").Parse(verificationEmailTemplate))
	passwordResetTmpl = template.Must(template.New("password_reset").Parse(passwordResetEmailTemplate))
)

func renderVerificationEmail(name, link, code string) (string, error) {
	var sb strings.Builder
	err := verificationTmpl.Execute(&sb, struct {
		Name string
		Link string
		Code string
		Year int
	}{
		Name: name,
		Link: link,
		Code: code,
		Year: time.Now().Year(),
	})
	if err != nil {
		return "", err
	}

	return sb.String(), nil
}

func renderPasswordResetEmail(name, link string) (string, error) {
	var sb strings.Builder
	err := passwordResetTmpl.Execute(&sb, struct {
		Name string
		Link string
		Year int
	}{
		Name: name,
		Link: link,
		Year: time.Now().Year(),
	})
	if err != nil {
		return "", err
	}

	return sb.String(), nil
}
