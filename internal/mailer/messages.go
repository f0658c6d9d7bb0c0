package mailer

import "fmt"

// Builders for the account core's transactional messages. Kept as plain
// string templates; the storefront UI owns anything richer.

// Welcome greets a freshly registered account.
func Welcome(to, name string) Message {
	return Message{
		To:      to,
		Subject: "Welcome to Meridian",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your Meridian account has been created with this email address. Verify it to start shopping.</p>",
			name),
		Text: fmt.Sprintf(
			"Hi %s,\n\nYour Meridian account has been created with this email address. Verify it to start shopping.\n",
			name),
	}
}

// VerifyCode carries an account verification OTP.
func VerifyCode(to, name, code string) Message {
	return Message{
		To:      to,
		Subject: "Verify your Meridian account",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your verification code is <strong>%s</strong>. It expires in 24 hours.</p>",
			name, code),
		Text: fmt.Sprintf(
			"Hi %s,\n\nYour verification code is %s. It expires in 24 hours.\n",
			name, code),
	}
}

// ResetCode carries a password reset OTP.
func ResetCode(to, name, code string) Message {
	return Message{
		To:      to,
		Subject: "Reset your Meridian password",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your password reset code is <strong>%s</strong>. It expires in 15 minutes. If you did not request this, you can ignore this email.</p>",
			name, code),
		Text: fmt.Sprintf(
			"Hi %s,\n\nYour password reset code is %s. It expires in 15 minutes. If you did not request this, you can ignore this email.\n",
			name, code),
	}
}

// PasswordChanged confirms a completed password reset.
func PasswordChanged(to, name string) Message {
	return Message{
		To:      to,
		Subject: "Your Meridian password was changed",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your password was just changed. If this was not you, reset it again immediately.</p>",
			name),
		Text: fmt.Sprintf(
			"Hi %s,\n\nYour password was just changed. If this was not you, reset it again immediately.\n",
			name),
	}
}
