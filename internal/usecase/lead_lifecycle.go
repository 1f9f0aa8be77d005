package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/metrics"
	"github.com/hpol369/gold-ira-platform-sub026/internal/infra/phone"
)

// LeadLifecycle owns lead status transitions and the notification handle.
type LeadLifecycle struct {
	Repo    entity.LeadRepositoryInterface
	Channel NotificationChannel
	Partner PartnerSubmitter
	Locker  Locker
	Alerter OpsAlerter
	Log     logrus.FieldLogger

	now func() time.Time
}

func NewLeadLifecycle(
	repo entity.LeadRepositoryInterface,
	channel NotificationChannel,
	partner PartnerSubmitter,
	locker Locker,
	alerter OpsAlerter,
	log logrus.FieldLogger,
) *LeadLifecycle {
	return &LeadLifecycle{
		Repo:    repo,
		Channel: channel,
		Partner: partner,
		Locker:  locker,
		Alerter: alerter,
		Log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func leadLockKey(id string) string   { return "lead:" + id }
func notifyLockKey(id string) string { return "notify:" + id }

func (uc *LeadLifecycle) CreateLead(ctx context.Context, input CreateLeadInput, location string) (*entity.Lead, error) {
	input = input.trimmed()
	if verr := checkInput(input); verr != nil {
		return nil, verr
	}

	source := input.Source
	if source == "" {
		source = "direct"
	}

	lead := entity.NewLead(input.FirstName, input.LastName, input.Email, phone.NormalizeE164(input.Phone), source, input.UTMParams)
	lead.Location = location

	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, storageError("create lead", err)
	}
	metrics.RecordLeadCreated(source)

	uc.Log.WithFields(logrus.Fields{"lead_id": lead.ID, "source": source}).Info("✅ Lead captured")

	uc.Notify(ctx, lead.ID, location)
	return lead, nil
}

func (uc *LeadLifecycle) GetLead(ctx context.Context, id string) (*entity.Lead, error) {
	if !isUUID(id) {
		return nil, invalidLeadID()
	}
	lead, err := uc.Repo.FindByID(ctx, id)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, notFound(CodeLeadNotFound, "lead not found")
	}
	if err != nil {
		return nil, storageError("find lead", err)
	}
	return lead, nil
}

// EnrichLead stores the savings answers and the derived deal range in one write.
func (uc *LeadLifecycle) EnrichLead(ctx context.Context, id string, input EnrichLeadInput) (*entity.Lead, error) {
	if !isUUID(id) {
		return nil, invalidLeadID()
	}
	if verr := checkInput(input); verr != nil {
		return nil, verr
	}
	if _, ok := LookupBracket(input.TotalRetirementSavings); !ok {
		return nil, &DomainError{
			Code:    CodeValidation,
			Message: "unknown savings bracket: " + input.TotalRetirementSavings,
			Fields:  []string{"totalRetirementSavings"},
		}
	}

	est := EstimateDeal(input.TotalRetirementSavings, input.PercentageToProtect)
	lead, err := uc.Repo.Enrich(ctx, id, entity.Enrichment{
		TotalRetirementSavings: input.TotalRetirementSavings,
		PercentageToProtect:    input.PercentageToProtect,
		PotentialDealMin:       est.Min,
		PotentialDealMax:       est.Max,
	})
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, notFound(CodeLeadNotFound, "lead not found")
	}
	if err != nil {
		return nil, storageError("enrich lead", err)
	}

	uc.Log.WithFields(logrus.Fields{
		"lead_id":  id,
		"deal_max": est.Max,
		"hot_tier": int(HotLeadTier(est.Max)),
	}).Info("💰 Lead enriched")

	uc.Notify(ctx, id, "")
	return lead, nil
}

// UpdateStatus applies a forward-only transition. Replaying the current status
// is a no-op; sent_to_augusta can only come from SubmitToPartner.
func (uc *LeadLifecycle) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) (*entity.Lead, error) {
	if !isUUID(id) {
		return nil, invalidLeadID()
	}
	if !status.Valid() {
		return nil, &DomainError{Code: CodeValidation, Message: "unknown status: " + string(status), Fields: []string{"status"}}
	}
	if status == entity.StatusSentToAugusta {
		return nil, &DomainError{Code: CodeInvalidTransition, Message: "sent_to_augusta is set by partner submission only"}
	}

	lead, changed, err := uc.updateStatusLocked(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if changed {
		uc.Notify(ctx, id, "")
	}
	return lead, nil
}

func (uc *LeadLifecycle) updateStatusLocked(ctx context.Context, id string, status entity.LeadStatus) (*entity.Lead, bool, error) {
	unlock, err := uc.Locker.Lock(ctx, leadLockKey(id))
	if err != nil {
		return nil, false, &TechnicalError{Code: "LOCK_ERROR", Message: "acquire lead lock", Err: err}
	}
	defer unlock()

	lead, err := uc.GetLead(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if lead.Status == status {
		return lead, false, nil
	}
	if !lead.Status.CanTransitionTo(status) {
		return nil, false, &DomainError{
			Code:    CodeInvalidTransition,
			Message: "cannot move lead from " + string(lead.Status) + " to " + string(status),
		}
	}

	if err := uc.Repo.UpdateStatus(ctx, id, status, entity.StatusExtras{}); err != nil {
		return nil, false, storageError("update lead status", err)
	}
	lead.Status = status

	uc.Log.WithFields(logrus.Fields{"lead_id": id, "status": status}).Info("🔄 Lead status updated")
	return lead, true, nil
}

// SubmitToPartner sends the lead to the partner at most once. The check, the
// partner call and the status write all happen under the per-lead lock.
func (uc *LeadLifecycle) SubmitToPartner(ctx context.Context, id string) (SubmitResult, error) {
	if !isUUID(id) {
		return SubmitResult{}, invalidLeadID()
	}
	result, lead, err := uc.submitLocked(ctx, id)
	if err != nil {
		return SubmitResult{}, err
	}

	switch {
	case result.AlreadySubmitted:
	case result.Submitted:
		uc.Notify(ctx, id, "")
	default:
		uc.alertPartnerFailure(lead)
	}
	return result, nil
}

func (uc *LeadLifecycle) submitLocked(ctx context.Context, id string) (SubmitResult, *entity.Lead, error) {
	unlock, err := uc.Locker.Lock(ctx, leadLockKey(id))
	if err != nil {
		return SubmitResult{}, nil, &TechnicalError{Code: "LOCK_ERROR", Message: "acquire lead lock", Err: err}
	}
	defer unlock()

	lead, err := uc.GetLead(ctx, id)
	if err != nil {
		return SubmitResult{}, nil, err
	}

	log := uc.Log.WithField("lead_id", id)

	if lead.Status.AtLeast(entity.StatusSentToAugusta) {
		metrics.RecordPartnerSubmission("duplicate")
		log.Info("↩️ Lead already sent to Augusta, skipping")
		return SubmitResult{Submitted: true, AlreadySubmitted: true}, lead, nil
	}

	if !uc.Partner.Submit(ctx, lead) {
		metrics.RecordPartnerSubmission("rejected")
		log.Warn("⚠️ Augusta did not accept the lead")
		return SubmitResult{}, lead, nil
	}
	metrics.RecordPartnerSubmission("accepted")

	at := uc.now()
	applied, err := uc.Repo.MarkSubmitted(ctx, id, at)
	if err != nil {
		log.WithError(err).Error("❌ CRITICAL: Augusta accepted the lead but the status write failed")
		return SubmitResult{}, lead, storageError("mark lead submitted", err)
	}
	if !applied {
		log.Warn("⚠️ Lead left 'new' while the submission was in flight")
	}

	log.Info("🚀 Lead sent to Augusta")
	return SubmitResult{Submitted: true}, lead, nil
}

func (uc *LeadLifecycle) alertPartnerFailure(lead *entity.Lead) {
	if uc.Alerter == nil || lead == nil {
		return
	}
	snapshot := lead.Clone()
	go func() {
		if err := uc.Alerter.SendPartnerFailureAlert(snapshot); err != nil {
			metrics.RecordIntegrationError("mail")
			uc.Log.WithError(err).WithField("lead_id", snapshot.ID).Warn("⚠️ Ops alert email failed")
		}
	}()
}

// Notify brings the lead's single channel message up to date: edit when a
// handle exists, otherwise send and persist the new handle. Failures are
// logged and never returned.
func (uc *LeadLifecycle) Notify(ctx context.Context, id, location string) {
	if uc.Channel == nil {
		return
	}
	log := uc.Log.WithField("lead_id", id)

	unlock, err := uc.Locker.Lock(ctx, notifyLockKey(id))
	if err != nil {
		log.WithError(err).Warn("⚠️ Notification skipped, lock unavailable")
		return
	}
	defer unlock()

	lead, err := uc.Repo.FindByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("⚠️ Notification skipped, lead not loaded")
		return
	}

	text := ComposeLeadNotification(lead, location)

	if lead.HasMessage() {
		err := uc.Channel.Edit(ctx, lead.TelegramMessageID, text)
		if err == nil {
			metrics.RecordNotification("edit", true)
			return
		}
		metrics.RecordNotification("edit", false)
		if !errors.Is(err, entity.ErrMessageNotFound) {
			log.WithError(err).Warn("⚠️ Telegram edit failed")
			return
		}
		log.Warn("⚠️ Telegram message is gone, sending a replacement")
	}

	msgID, err := uc.Channel.Send(ctx, text, IsUrgent(lead))
	if err != nil {
		metrics.RecordNotification("send", false)
		log.WithError(err).Warn("⚠️ Telegram send failed")
		return
	}
	metrics.RecordNotification("send", true)

	persisted, err := uc.Repo.SwapMessageID(ctx, id, lead.TelegramMessageID, msgID)
	if err != nil {
		log.WithError(err).Error("❌ Failed to store Telegram message id")
		return
	}
	if persisted != msgID {
		// Another writer stored its handle first; keep that one current.
		log.WithField("message_id", persisted).Warn("⚠️ Lost handle race, converging on stored message")
		if err := uc.Channel.Edit(ctx, persisted, text); err != nil {
			log.WithError(err).Warn("⚠️ Telegram edit failed")
		}
	}
}

// RetryPendingNotifications re-runs Notify for recent leads whose first send
// never went through. It returns how many leads now have a handle.
func (uc *LeadLifecycle) RetryPendingNotifications(ctx context.Context, window time.Duration) (int, error) {
	pending, err := uc.Repo.ListUnnotified(ctx, uc.now().Add(-window))
	if err != nil {
		return 0, storageError("list unnotified leads", err)
	}

	delivered := 0
	for _, lead := range pending {
		if ctx.Err() != nil {
			break
		}
		uc.Notify(ctx, lead.ID, "")
		if refreshed, err := uc.Repo.FindByID(ctx, lead.ID); err == nil && refreshed.HasMessage() {
			delivered++
		}
	}
	return delivered, nil
}

func (uc *LeadLifecycle) ListHighValue(ctx context.Context, minDealMax int64) ([]*entity.Lead, error) {
	if minDealMax <= 0 {
		minDealMax = HighValueThreshold
	}
	leads, err := uc.Repo.ListHighValue(ctx, minDealMax)
	if err != nil {
		return nil, storageError("list high-value leads", err)
	}
	return leads, nil
}
