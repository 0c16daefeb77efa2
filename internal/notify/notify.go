package notify

import (
	"context"
	"fmt"

	"bleedforlife/internal/impact"
	"bleedforlife/pkg/types"

	"github.com/sirupsen/logrus"
)

type notificationWriter interface {
	Create(ctx context.Context, n *types.Notification) error
}

// Notifier turns domain events into rows in the notifications table.
type Notifier struct {
	logger *logrus.Logger
	repo   notificationWriter
}

func New(logger *logrus.Logger, repo notificationWriter) *Notifier {
	return &Notifier{logger: logger, repo: repo}
}

func (n *Notifier) send(ctx context.Context, userID string, kind types.NotificationType, title, message string) error {
	err := n.repo.Create(ctx, &types.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    &kind,
	})
	if err != nil {
		return fmt.Errorf("failed to send %s notification to %s: %w", kind, userID, err)
	}

	n.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"type":    kind,
	}).Debug("notification sent")

	return nil
}

// TierChanged congratulates a donor whose tier went up. Equal or lower tiers
// are ignored; it reports whether a notification was written.
func (n *Notifier) TierChanged(ctx context.Context, userID string, before, after types.AchievementTier) (bool, error) {
	if impact.TierRank(after) <= impact.TierRank(before) {
		return false, nil
	}

	title := fmt.Sprintf("You're now a %s!", after.Label())
	message := fmt.Sprintf("Your donations have earned you the %s badge. Thank you for saving lives.", after.Label())
	return true, n.send(ctx, userID, types.NotificationTypeAchievement, title, message)
}

func (n *Notifier) EligibleAgain(ctx context.Context, userID string) error {
	return n.send(ctx, userID, types.NotificationTypeReminder,
		"You can donate again",
		"Your 56-day recovery window has ended. Book your next donation whenever you're ready.",
	)
}

// EmergencyRequest alerts every donor in donors, stopping at the first
// failure.
func (n *Notifier) EmergencyRequest(ctx context.Context, req *types.BloodRequest, donors []*types.Profile) (int, error) {
	title := fmt.Sprintf("Emergency: %s blood needed", req.BloodType)
	message := fmt.Sprintf("%s needs %d unit(s) at %s. Your blood type is compatible.", req.PatientName, req.UnitsNeeded, req.HospitalName)

	sent := 0
	for _, donor := range donors {
		if donor.UserID == req.RequesterID {
			continue
		}
		if err := n.send(ctx, donor.UserID, types.NotificationTypeEmergency, title, message); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

func (n *Notifier) RequestResponse(ctx context.Context, req *types.BloodRequest, donor *types.Profile) error {
	name := donor.DisplayName()
	if name == "" {
		name = "A donor"
	}

	return n.send(ctx, req.RequesterID, types.NotificationTypeMessage,
		"A donor responded to your request",
		fmt.Sprintf("%s has offered to donate for %s at %s.", name, req.PatientName, req.HospitalName),
	)
}
