// Package egapro reads published professional-equality declarations from
// the EgaPro public API. Client implements reglementation.FreshnessOracle.
package egapro

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/betagouv/portail-rse-sub001/pkg/reglementation"
	"github.com/betagouv/portail-rse-sub001/pkg/util/resiliency"
)

// DefaultBaseURL is the public EgaPro service.
const DefaultBaseURL = "https://egapro.travail.gouv.fr"

// ErrBadRequest is returned by Indicateurs when EgaPro rejects the request.
var ErrBadRequest = errors.New("egapro: bad request")

const maxBody = 1 << 20

// Client queries the EgaPro public API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *resiliency.EnhancedClient
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRate limits outbound requests to r per second with burst b.
func WithRate(r rate.Limit, b int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, b) }
}

// WithHTTP replaces the resilient HTTP client.
func WithHTTP(hc *resiliency.EnhancedClient) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for baseURL. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: resiliency.NewEnhancedClient(
			resiliency.WithTimeout(10*time.Second),
			resiliency.WithBreaker(resiliency.NewCircuitBreaker("egapro", 5, 30*time.Second)),
		),
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
		logger:  slog.Default().With("component", "egapro"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ reglementation.FreshnessOracle = (*Client)(nil)

// declaration is the subset of the public payload the portal reads.
type declaration struct {
	Declaration json.RawMessage       `json:"déclaration"`
	Indicateurs map[string]indicateur `json:"indicateurs"`
}

type indicateur struct {
	Resultat              json.Number `json:"résultat"`
	PopulationFavorable   string      `json:"population_favorable"`
	ObjectifDeProgression string      `json:"objectif_de_progression"`
}

// HasPublishedDeclaration reports whether siren published its index for
// year. A missing declaration and a rejected request both read as "not
// published"; transport failures, 429 and 5xx fail with
// reglementation.ErrOracleUnavailable.
func (c *Client) HasPublishedDeclaration(ctx context.Context, siren string, year int) (bool, error) {
	status, body, err := c.get(ctx, siren, year)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusOK:
		var d declaration
		if err := json.Unmarshal(body, &d); err != nil {
			return false, fmt.Errorf("%w: decode declaration: %v", reglementation.ErrOracleUnavailable, err)
		}
		return len(d.Declaration) > 0 && string(d.Declaration) != "null", nil
	case http.StatusBadRequest:
		c.logger.WarnContext(ctx, "egapro rejected declaration lookup", "siren", siren, "year", year)
		return false, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, fmt.Errorf("%w: unexpected status %d", reglementation.ErrOracleUnavailable, status)
}

// Indicateurs is the EgaPro data prefilled in a BDESE.
type Indicateurs struct {
	// NombreFemmesPlusHautesRemunerations is the number of women among the
	// ten highest paid employees, when declared.
	NombreFemmesPlusHautesRemunerations *int `json:"nombre_femmes_plus_hautes_remunerations"`
	// ObjectifsProgression lists "label : objectif" lines, when declared.
	ObjectifsProgression string `json:"objectifs_progression,omitempty"`
}

var indicateurLabels = map[string]string{
	"promotions":                  "Écart taux promotion",
	"augmentations_et_promotions": "Écart taux d'augmentation",
	"rémunérations":               "Écart rémunérations",
	"congés_maternité":            "Retour congé maternité",
	"hautes_rémunérations":        "Hautes rémunérations",
}

// indicateurOrder keeps ObjectifsProgression stable across calls.
var indicateurOrder = []string{
	"rémunérations",
	"augmentations_et_promotions",
	"promotions",
	"congés_maternité",
	"hautes_rémunérations",
}

// Indicateurs returns the declared indicators used to prefill a BDESE. An
// absent declaration yields an empty result.
func (c *Client) Indicateurs(ctx context.Context, siren string, year int) (Indicateurs, error) {
	var out Indicateurs
	status, body, err := c.get(ctx, siren, year)
	if err != nil {
		return out, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusBadRequest:
		c.logger.WarnContext(ctx, "egapro rejected indicators lookup", "siren", siren, "year", year)
		return out, ErrBadRequest
	default:
		return out, nil
	}

	var d declaration
	if err := json.Unmarshal(body, &d); err != nil {
		return out, fmt.Errorf("egapro: decode indicators: %w", err)
	}
	if hr, ok := d.Indicateurs["hautes_rémunérations"]; ok && hr.Resultat != "" {
		n, err := strconv.Atoi(hr.Resultat.String())
		if err != nil {
			return out, fmt.Errorf("egapro: hautes_rémunérations: %w", err)
		}
		if hr.PopulationFavorable != "hommes" {
			n = 10 - n
		}
		out.NombreFemmesPlusHautesRemunerations = &n
	}

	var lines []string
	for _, key := range indicateurOrder {
		if ind, ok := d.Indicateurs[key]; ok && ind.ObjectifDeProgression != "" {
			lines = append(lines, indicateurLabels[key]+" : "+ind.ObjectifDeProgression)
		}
	}
	out.ObjectifsProgression = strings.Join(lines, "\n")
	return out, nil
}

func (c *Client) get(ctx context.Context, siren string, year int) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", reglementation.ErrOracleUnavailable, err)
	}

	u := fmt.Sprintf("%s/api/public/declaration/%s/%d", c.baseURL, url.PathEscape(siren), year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("egapro: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "egapro request failed", "siren", siren, "year", year, "error", err)
		return 0, nil, fmt.Errorf("%w: %v", reglementation.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %v", reglementation.ErrOracleUnavailable, err)
	}
	return resp.StatusCode, body, nil
}
