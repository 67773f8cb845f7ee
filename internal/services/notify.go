package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nimbusworks/opsdesk/internal/mailer"
	"github.com/nimbusworks/opsdesk/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Notifier fires mail on specific state transitions. Sends are best-effort
// and advisory: they run asynchronously, failures are logged and recorded in
// mail_logs, and they never block or roll back the triggering state change.
type Notifier struct {
	db      *gorm.DB
	mailer  mailer.Mailer
	log     zerolog.Logger
	enabled bool
	wg      sync.WaitGroup
}

// NewNotifier creates a Notifier. A disabled notifier drops every event.
func NewNotifier(db *gorm.DB, m mailer.Mailer, log zerolog.Logger, enabled bool) *Notifier {
	return &Notifier{db: db, mailer: m, log: log, enabled: enabled}
}

// Wait blocks until in-flight sends finish. Called on graceful shutdown.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// ProjectAssigned notifies an engineer of a new project assignment.
func (n *Notifier) ProjectAssigned(project *models.Project, engineer *models.User) {
	if engineer == nil || engineer.Email == "" {
		return
	}
	n.dispatch(mailer.Message{
		To:       engineer.Email,
		Subject:  fmt.Sprintf("Project %s assigned to you", project.ProjectNumber),
		Template: "project_assigned",
		Params: map[string]string{
			"engineerName":  engineer.Name,
			"projectNumber": project.ProjectNumber,
			"projectName":   project.ProjectName,
			"siteAddress":   project.SiteAddress,
		},
		PlainText: fmt.Sprintf("You have been assigned to project %s (%s).", project.ProjectNumber, project.ProjectName),
	})
}

// EstimationChecked notifies the approver that an estimation is ready.
func (n *Notifier) EstimationChecked(est *models.Estimation, project *models.Project, recipient string, checkedBy string) {
	if recipient == "" {
		return
	}
	n.dispatch(mailer.Message{
		To:       recipient,
		Subject:  fmt.Sprintf("Estimation %s ready for approval", est.EstimationNumber),
		Template: "estimation_checked",
		Params: map[string]string{
			"estimationNumber": est.EstimationNumber,
			"projectNumber":    project.ProjectNumber,
			"checkedBy":        checkedBy,
			"estimatedAmount":  fmt.Sprintf("%.2f", est.EstimatedAmount),
		},
		PlainText: fmt.Sprintf("Estimation %s for project %s has been checked.", est.EstimationNumber, project.ProjectNumber),
	})
}

func (n *Notifier) dispatch(msg mailer.Message) {
	if !n.enabled || n.mailer == nil {
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		entry := models.MailLog{
			Recipient: msg.To,
			Subject:   msg.Subject,
			Template:  msg.Template,
			Status:    models.MailStatusSent,
		}
		if raw, err := json.Marshal(msg.Params); err == nil {
			entry.Params.JSON = raw
		}

		if err := n.mailer.Send(ctx, msg); err != nil {
			entry.Status = models.MailStatusFailed
			entry.Error = err.Error()
			n.log.Warn().
				Err(err).
				Str("recipient", msg.To).
				Str("template", msg.Template).
				Msg("notification send failed")
		}

		if err := n.db.Create(&entry).Error; err != nil {
			n.log.Warn().Err(err).Msg("failed to record mail log")
		}
	}()
}
