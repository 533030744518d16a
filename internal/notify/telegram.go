package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"taskcompass/internal/model"
)

// TelegramChannel delivers notifications through the Telegram Bot API.
// Recipients without a mapped chat id are skipped.
type TelegramChannel struct {
	token   string
	baseURL string
	client  *http.Client
	chats   map[string]int64
}

func NewTelegramChannel(botToken string, chats map[string]int64) *TelegramChannel {
	return &TelegramChannel{
		token:   botToken,
		baseURL: fmt.Sprintf("https://api.telegram.org/bot%s", botToken),
		client:  &http.Client{},
		chats:   chats,
	}
}

func (t *TelegramChannel) Name() string { return "telegram" }

type tgResponse struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *TelegramChannel) Send(n model.Notification) error {
	if t == nil || t.token == "" {
		return nil
	}
	chatID, ok := t.chats[n.Recipient]
	if !ok || chatID == 0 {
		log.Printf("[tg][skip] no chat mapping for recipient %s", n.Recipient)
		return nil
	}

	body := map[string]any{
		"chat_id":                  chatID,
		"text":                     fmt.Sprintf("<b>%s</b>\n%s", n.Title, n.Body),
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	b, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, t.baseURL+"/sendMessage", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	var api tgResponse
	_ = json.Unmarshal(respBody, &api)
	if resp.StatusCode != http.StatusOK || !api.Ok {
		return fmt.Errorf("telegram sendMessage failed: status=%d ok=%v desc=%s", resp.StatusCode, api.Ok, api.Description)
	}
	return nil
}
