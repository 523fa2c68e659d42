// Copyright 2025 EduMesh
// Licensed under the EUPL-1.2

package mailer

import "fmt"

// WelcomeMessage is sent after a direct signup.
func WelcomeMessage(to, firstName string) Message {
	body := fmt.Sprintf(`Hi %s,<br><br>
Your account has been successfully created.<br>
You can now log in using either your email or phone number and the password you set during registration.<br><br>
Thank you for joining us!<br><br>
Best regards,<br>The Admin Team`, firstName)
	return NewMessage(to, "Welcome to Our Platform 🎉", body)
}

// VerificationCodeMessage carries the signup verification code.
func VerificationCodeMessage(to, firstName, code string) Message {
	body := fmt.Sprintf(`Hi %s,<br><br>
Your account is 90%% ready!<br>
Use this code <h2 style="color:rgb(249, 76, 226);">%s</h2> to verify your email and you'll be good to go.<br><br>
The code expires in 1 hour.<br>
Thank you for joining us, almost!<br><br>
Best regards,<br>The Admin Team`, firstName, code)
	return NewMessage(to, "Welcome to Our Platform 🎉", body)
}

// VerifiedWelcomeMessage is sent once a verification code was confirmed.
func VerifiedWelcomeMessage(to, firstName string) Message {
	body := fmt.Sprintf(`Hi %s,<br><br>
Your account was successfully created.<br>
You can now log in using either your email or phone number and the password you set during registration.<br><br>
Thank you for joining us!<br><br>
Best regards,<br>The Admin Team`, firstName)
	return NewMessage(to, "Congratulations! Welcome to Our Platform 🎉", body)
}

// PasswordResetMessage carries the reset link built from the raw token.
func PasswordResetMessage(to, resetURL string) Message {
	body := fmt.Sprintf(`You are receiving this email because you requested a password reset. Click the link below to reset your password: <br><a href="%s">%s</a><br>Note: The link expires in 15 minutes! If you did not request this, please ignore this email.`, resetURL, resetURL)
	return NewMessage(to, "Password Reset Request 🔐", body)
}
