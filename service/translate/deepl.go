package translate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PolyChat/service/metrics"
	"PolyChat/tools/errs"
)

// DeepL calls the DeepL v2 translate endpoint.
type DeepL struct {
	endpoint string
	authKey  string
	client   *http.Client
}

func NewDeepL(endpoint, authKey string, timeout time.Duration) *DeepL {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DeepL{
		endpoint: endpoint,
		authKey:  authKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

// Translate validates the language pair, then asks DeepL. Any upstream
// failure is reported as TRANSLATOR_ERROR.
func (d *DeepL) Translate(ctx context.Context, text, source, target string) (string, error) {
	if source == "" {
		source = Auto
	}
	if source != Auto && !IsSupported(source) {
		return "", errs.ErrInvalidSourceLang.WrapMsg("", "lang", source)
	}
	if !IsSupported(target) {
		return "", errs.ErrInvalidTargetLang.WrapMsg("", "lang", target)
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", strings.ToUpper(target))
	if source != Auto {
		form.Set("source_lang", strings.ToUpper(source))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errs.ErrTranslator.WrapMsg(err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+d.authKey)

	start := time.Now()
	resp, err := d.client.Do(req)
	metrics.TranslateLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", errs.ErrTranslator.WrapMsg(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errs.ErrTranslator.WrapMsg("upstream status", "status", resp.StatusCode, "body", string(body))
	}
	var out deeplResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errs.ErrTranslator.WrapMsg("decode response", "err", err)
	}
	if len(out.Translations) == 0 {
		return "", errs.ErrTranslator.WrapMsg("empty translations")
	}
	return out.Translations[0].Text, nil
}
