package utils

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/gomail.v2"
)

var loadEnvOnce sync.Once

func SendEmail(to, subject, body string) error {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: Error loading .env file. Using environment variables directly.")
		}
	})
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))

	from := os.Getenv("EMAIL_FROM")
	if from == "" {
		from = os.Getenv("EMAIL_USER")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(
		os.Getenv("SMTP_HOST"),
		port,
		os.Getenv("EMAIL_USER"),
		os.Getenv("EMAIL_PASS"),
	)

	return d.DialAndSend(m)
}
