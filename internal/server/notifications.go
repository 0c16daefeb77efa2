package server

import (
	"errors"
	"net/http"
	"strings"

	"bleedforlife/pkg/types"
)

const notificationsPageLimit = 50

func (s *Service) handleGetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	notifications, err := s.notificationRepo.NotificationsByUser(ctx, userID, notificationsPageLimit)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("failed to fetch notifications")
		s.internalServerError(w)
		return
	}

	unread := 0
	for _, n := range notifications {
		if n.IsRead == nil || !*n.IsRead {
			unread++
		}
	}

	base := flashes(r)
	base.Title = "Notifications"

	s.renderPage(w, r, "page.notifications", &types.NotificationsPageData{
		BasePageData:  base,
		Notifications: notifications,
		UnreadCount:   unread,
	})
}

func (s *Service) handlePostNotificationRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.logger.WithError(err).Error("user id not found in context")
		s.internalServerError(w)
		return
	}

	notificationID := strings.TrimSpace(r.PathValue("id"))

	err = s.notificationRepo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotificationNotFound) {
			s.redirectWithError(w, r, "/notifications", "Notification not found.")
			return
		}
		s.logger.WithError(err).WithField("notification_id", notificationID).Error("failed to mark notification read")
		s.internalServerError(w)
		return
	}

	http.Redirect(w, r, "/notifications", http.StatusSeeOther)
}
