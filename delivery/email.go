package delivery

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Rehodra/AI-Youtube-Analyser/core/models"
)

// EmailSender delivers completion notifications
type EmailSender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail over implicit TLS (port 465)
type SMTPSender struct {
	host     string
	port     int
	from     string
	password string
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(host string, port int, from, password string) *SMTPSender {
	return &SMTPSender{host: host, port: port, from: from, password: password}
}

// Send delivers one plain-text message
func (s *SMTPSender) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.host})
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", s.from, s.password, s.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth failed: %w", err)
	}
	if err := client.Mail(s.from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", s.from, to, subject, body)
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// notificationSubject is the subject line for finished-job mail
const notificationSubject = "Your AI channel analysis report is ready"

// buildNotificationBody assembles the teaser body for a finished job:
// headline, a few key insights pulled from succeeded modules, and a pointer
// to the full report
func buildNotificationBody(job *models.Job) string {
	var b strings.Builder

	b.WriteString("Your AI analysis report is ready.\n\n")
	fmt.Fprintf(&b, "Channel: %s\n", job.Channel)
	fmt.Fprintf(&b, "Result: %s\n", statusLine(job.Status))

	if insights := keyInsights(job); len(insights) > 0 {
		b.WriteString("\nKey insights:\n")
		for _, insight := range insights {
			fmt.Fprintf(&b, "- %s\n", insight)
		}
	}

	if job.ReportURI != "" {
		fmt.Fprintf(&b, "\nFull report: %s\n", job.ReportURI)
	}
	b.WriteString("\nOpen your dashboard to explore the full analysis.\n")
	return b.String()
}

func statusLine(status models.JobStatus) string {
	switch status {
	case models.JobStatusCompleted:
		return "all requested modules completed"
	case models.JobStatusPartial:
		return "some modules completed; details are in the report"
	case models.JobStatusFailed:
		return "the analysis could not be completed"
	default:
		return string(status)
	}
}

// keyInsights extracts up to three one-line highlights from succeeded module
// payloads. Anything unparsable is silently skipped.
func keyInsights(job *models.Job) []string {
	var insights []string

	if payload := succeededPayload(job, models.ModuleCTRAnalysis); payload != nil {
		var r models.CTRAnalysisResult
		if json.Unmarshal(payload, &r) == nil {
			insights = append(insights, fmt.Sprintf("CTR potential score: %.1f/10", r.Score))
		}
	}
	if payload := succeededPayload(job, models.ModuleCopyrightScan); payload != nil {
		var r models.CopyrightScanResult
		if json.Unmarshal(payload, &r) == nil && r.RiskLevel != "" {
			insights = append(insights, fmt.Sprintf("Copyright risk level: %s", r.RiskLevel))
		}
	}
	if payload := succeededPayload(job, models.ModuleTitleEngine); payload != nil {
		var r models.TitleEngineResult
		if json.Unmarshal(payload, &r) == nil && len(r.Suggestions) > 0 {
			insights = append(insights, fmt.Sprintf("%d video titles analysed with ranked alternatives", len(r.Suggestions)))
		}
	}
	if payload := succeededPayload(job, models.ModuleTrendIntelligence); payload != nil {
		var r models.TrendIntelligenceResult
		if json.Unmarshal(payload, &r) == nil && len(r.TrendingTopics) > 0 {
			insights = append(insights, fmt.Sprintf("Top trending topic: %s", r.TrendingTopics[0].Name))
		}
	}

	if len(insights) > 3 {
		insights = insights[:3]
	}
	return insights
}

func succeededPayload(job *models.Job, kind models.ModuleKind) []byte {
	slot, ok := job.Slots[kind]
	if !ok || slot.State != models.SlotSucceeded {
		return nil
	}
	return slot.Payload
}
