package notification_test

import (
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatag-tech/elearning/core/notification"
	emailsvc "github.com/hatag-tech/elearning/services/email"
	logsvc "github.com/hatag-tech/elearning/services/logger"
	"github.com/hatag-tech/elearning/storage/kv"
	"github.com/hatag-tech/elearning/tests"
)

func TestService(t *testing.T) {
	env := testutil.NewEnv(t)
	svc := env.Notifications

	first := svc.Add("u-student", "Welcome", "Hello there", "", nil)
	assert.Equal(t, notification.TypeInfo, first.Type)
	assert.False(t, first.Read)
	second := svc.Add("u-student", "Enrolled", "You have successfully enrolled in Go!", notification.TypeSuccess, map[string]interface{}{"courseId": "course-ai"})
	svc.Add("u-instructor", "Other", "Not yours", notification.TypeWarning, nil)

	t.Run("most recent first", func(t *testing.T) {
		got := svc.ForUser("u-student")
		require.Len(t, got, 2)
		assert.Equal(t, second.ID, got[0].ID)
		assert.Equal(t, first.ID, got[1].ID)
		assert.Equal(t, 2, svc.UnreadCount("u-student"))
	})

	t.Run("mark as read", func(t *testing.T) {
		require.NoError(t, svc.MarkAsRead(first.ID))
		assert.Equal(t, 1, svc.UnreadCount("u-student"))
		assert.ErrorIs(t, svc.MarkAsRead("notif-unknown"), notification.ErrNotFound)
	})

	t.Run("mark all as read", func(t *testing.T) {
		assert.Equal(t, 1, svc.MarkAllAsRead("u-student"))
		assert.Equal(t, 0, svc.UnreadCount("u-student"))
		assert.Equal(t, 1, svc.UnreadCount("u-instructor"))
	})

	t.Run("clear", func(t *testing.T) {
		assert.Equal(t, 2, svc.Clear("u-student"))
		assert.Empty(t, svc.ForUser("u-student"))
		assert.Len(t, svc.ForUser("u-instructor"), 1)
	})
}

func TestService_WithMailer(t *testing.T) {
	conf := testutil.NewConfig()
	mailSvc := emailsvc.NewConsoleServiceMock(conf, logsvc.NewNopLogger())
	resolver := func(userID string) (mail.Address, bool) {
		if userID != "u-student" {
			return mail.Address{}, false
		}
		return mail.Address{Name: "Default Student", Address: "student@example.com"}, true
	}
	env := testutil.NewEnvWithStore(t, kv.NewMemory(), notification.WithMailer(conf, mailSvc, resolver))

	graded := env.Notifications.Add("u-student", "Assignment Graded", "Your assignment has been graded. Score: 85", notification.TypeSuccess, nil)
	env.Notifications.Add("u-nobody", "Dropped", "No mailbox", notification.TypeInfo, nil)
	mailSvc.Wait()

	sent := mailSvc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Assignment Graded", sent[0].Subject)
	assert.Equal(t, "student@example.com", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "Your assignment has been graded. Score: 85")
	assert.Contains(t, sent[0].HTMLContent, "<h2>Assignment Graded</h2>")
	assert.Equal(t, []string{"notification", "success"}, sent[0].Categories)
	assert.Equal(t, map[string]string{"notification_id": graded.ID, "user_id": "u-student"}, sent[0].Args)
}
