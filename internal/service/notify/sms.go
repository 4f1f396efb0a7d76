// internal/service/notify/sms.go
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// SMSChannel delivers verification codes through an HTTP SMS gateway.
type SMSChannel struct {
	gatewayURL string
	apiKey     string
	client     *http.Client
	logger     *zap.Logger
}

func NewSMSChannel(gatewayURL, apiKey string, logger *zap.Logger) *SMSChannel {
	return &SMSChannel{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type smsPayload struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// SendCode posts the code to the gateway and returns the message id
// assigned to the delivery.
func (s *SMSChannel) SendCode(ctx context.Context, destination, code string) (string, error) {
	messageID := ulid.Make().String()

	body, err := json.Marshal(smsPayload{
		To:      destination,
		Message: fmt.Sprintf("Your Sentra verification code is %s. It expires in 10 minutes.", code),
	})
	if err != nil {
		return "", deliveryErr(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return "", deliveryErr(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("sms delivery failed",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		return "", deliveryErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		err := fmt.Errorf("gateway returned status %d", resp.StatusCode)
		s.logger.Warn("sms delivery rejected",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		return "", deliveryErr(err)
	}

	s.logger.Info("verification sms sent", zap.String("message_id", messageID))
	return messageID, nil
}
