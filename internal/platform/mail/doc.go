// Package mail delivers multipart (text + HTML) email over SMTP. When no
// SMTP host is configured, LogSender records what would have been sent.
package mail
