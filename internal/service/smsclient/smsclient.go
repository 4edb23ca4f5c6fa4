package smsclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// JSON запрос к SMS шлюзу
type SMSRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// JSON ответ SMS шлюза
type SMSAnswer struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

var ErrNotConfigured = errors.New("sms gateway is not configured")

type Notifier interface {
	Send(ctx context.Context, phone string, message string) (SMSAnswer, error)
}

type smsClient struct {
	serviceAddr string
	token       string
	client      *resty.Client
}

func NewSMSClient(serviceAddr string, token string) Notifier {
	return smsClient{serviceAddr: serviceAddr, token: token, client: resty.New()}
}

func (client smsClient) Send(ctx context.Context, phone string, message string) (SMSAnswer, error) {
	if client.serviceAddr == "" {
		return SMSAnswer{}, ErrNotConfigured
	}
	path := "/api/sms/send"

	setreq := client.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(SMSRequest{Phone: phone, Message: message})
	if client.token != "" {
		setreq.SetAuthToken(client.token)
	}
	var answer SMSAnswer
	setreq.SetResult(&answer)

	setresp, err := setreq.Post(client.serviceAddr + path)
	if err != nil {
		return SMSAnswer{}, err
	}

	switch setresp.StatusCode() {
	case http.StatusOK, http.StatusAccepted:
		return answer, nil
	default:
		return SMSAnswer{}, fmt.Errorf("sms request status: %d", setresp.StatusCode())
	}
}
