package emailsvc

import (
	"encoding/json"
	"errors"
	"net/mail"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatag-tech/elearning/core"
	"github.com/hatag-tech/elearning/core/notification"
	logsvc "github.com/hatag-tech/elearning/services/logger"
	testutil "github.com/hatag-tech/elearning/tests"
)

func gradedMessage(conf *core.Config) *core.EmailMessage {
	notif := notification.Notification{
		ID:        "notif-1",
		UserID:    "u-student",
		Title:     "Assignment Graded",
		Message:   "Score: 42",
		Type:      notification.TypeSuccess,
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	msg := core.NewTemplatedMessage(conf, mail.Address{Name: "Jane", Address: "jane@example.com"}, notif.Title, "notification", notif)
	msg.Categories = []string{"notification", string(notif.Type)}
	msg.Args = map[string]string{"notification_id": notif.ID, "user_id": notif.UserID}
	return msg
}

type sgBody struct {
	Personalizations []struct {
		To         []struct{ Name, Email string } `json:"to"`
		Subject    string                         `json:"subject"`
		CustomArgs map[string]string              `json:"custom_args"`
	} `json:"personalizations"`
	Categories []string `json:"categories"`
	Content    []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

func TestSendgridService_prepare(t *testing.T) {
	conf := testutil.NewConfig()
	svc := newSendgridService(conf, logsvc.NewNopLogger())

	msg := gradedMessage(conf)
	require.NoError(t, msg.Render())

	var body sgBody
	require.NoError(t, json.Unmarshal(sgBodyOf(svc, *msg), &body))

	require.Len(t, body.Personalizations, 1)
	p := body.Personalizations[0]
	assert.Equal(t, "[Lumina] Assignment Graded", p.Subject)
	require.Len(t, p.To, 1)
	assert.Equal(t, "jane@example.com", p.To[0].Email)
	assert.Equal(t, map[string]string{"notification_id": "notif-1", "user_id": "u-student"}, p.CustomArgs)
	assert.Equal(t, []string{"notification", "success"}, body.Categories)

	require.Len(t, body.Content, 2)
	assert.Equal(t, "text/plain", body.Content[0].Type)
	assert.Contains(t, body.Content[0].Value, "Score: 42")
	assert.Equal(t, "text/html", body.Content[1].Type)
	assert.Contains(t, body.Content[1].Value, "<h2>Assignment Graded</h2>")
}

func sgBodyOf(svc *sendgridService, msg core.EmailMessage) []byte {
	var body []byte
	svc.api = func(req rest.Request) (*rest.Response, error) {
		body = req.Body
		return &rest.Response{StatusCode: 202}, nil
	}
	_ = svc.send(msg)
	return body
}

func TestSendgridService_SendMessages(t *testing.T) {
	conf := testutil.NewConfig()

	tests := []struct {
		name    string
		res     *rest.Response
		err     error
		wantErr string
	}{
		{name: "accepted", res: &rest.Response{StatusCode: 202}},
		{name: "rejected", res: &rest.Response{StatusCode: 401, Body: "unauthorized"}, wantErr: "sendgrid status 401: unauthorized"},
		{name: "transport error", err: errors.New("dial tcp: timeout"), wantErr: "dial tcp: timeout"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newSendgridService(conf, logsvc.NewNopLogger())
			var (
				mu    sync.Mutex
				calls int
			)
			svc.api = func(req rest.Request) (*rest.Response, error) {
				mu.Lock()
				calls++
				mu.Unlock()
				return tc.res, tc.err
			}

			err := svc.send(*gradedMessage(conf))
			if tc.wantErr != "" {
				assert.EqualError(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}

			svc.SendMessages(gradedMessage(conf), gradedMessage(conf))
			svc.Wait()
			assert.Equal(t, 3, calls)
		})
	}

	t.Run("no recipient", func(t *testing.T) {
		svc := newSendgridService(conf, logsvc.NewNopLogger())
		var calls int32
		svc.api = func(req rest.Request) (*rest.Response, error) {
			atomic.AddInt32(&calls, 1)
			return &rest.Response{StatusCode: 202}, nil
		}
		msg := gradedMessage(conf)
		msg.To = nil
		svc.SendMessages(msg)
		svc.Wait()
		assert.Zero(t, atomic.LoadInt32(&calls))
	})
}

func TestConsoleService_Wait(t *testing.T) {
	conf := testutil.NewConfig()
	svc := NewConsoleService(conf, logsvc.NewNopLogger()).(*consoleService)

	svc.SendMessages(gradedMessage(conf), gradedMessage(conf))
	svc.Wait()

	sent := svc.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, []string{"notification", "success"}, sent[0].Categories)
	assert.Contains(t, svc.format(sent[0]), "X-Categories: notification, success")
}
