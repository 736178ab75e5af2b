package contabilidad

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leogomez74/credicore/internal/application/contabilidad"
	"github.com/leogomez74/credicore/internal/domain/entity"
	"github.com/leogomez74/credicore/pkg/config"
)

// Verificar en tiempo de compilación que Client implementa Poster.
var _ contabilidad.Poster = (*Client)(nil)

// Client adaptador HTTP hacia el sistema contable externo. Envía cada despacho
// como un asiento JSON y espera el identificador del asiento creado.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient construye el cliente con el timeout de red de la configuración.
func NewClient(cfg config.ContabilidadConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type asientoRequest struct {
	TipoEvento string          `json:"tipo_evento"`
	Referencia string          `json:"referencia"`
	CreditoID  string          `json:"credito_id,omitempty"`
	Cuenta     string          `json:"cuenta"`
	Monto      string          `json:"monto"`
	Detalle    json.RawMessage `json:"detalle,omitempty"`
	Fecha      string          `json:"fecha"`
}

type asientoResponse struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// Postear envía el despacho al sistema contable. Un error de red o un HTTP no
// exitoso se devuelve como error para que el despachador programe el reintento.
func (c *Client) Postear(ctx context.Context, d *entity.DespachoContable) (*contabilidad.Resultado, error) {
	cuenta, ok := contabilidad.CuentaContable(d.TipoEvento)
	if !ok {
		return nil, fmt.Errorf("contabilidad: evento %q sin cuenta mapeada", d.TipoEvento)
	}

	payload := asientoRequest{
		TipoEvento: d.TipoEvento,
		Referencia: d.Referencia,
		CreditoID:  d.CreditoID,
		Cuenta:     cuenta,
		Monto:      d.Monto.StringFixed(2),
		Fecha:      d.CreatedAt.Format("2006-01-02"),
	}
	if json.Valid([]byte(d.Detalle)) {
		payload.Detalle = json.RawMessage(d.Detalle)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("contabilidad: serializar asiento: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/asientos", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("contabilidad: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("contabilidad: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("contabilidad: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("contabilidad: leer respuesta: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp asientoResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != "" {
			return nil, fmt.Errorf("contabilidad: HTTP %d: %s", resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("contabilidad: HTTP %d", resp.StatusCode)
	}

	var okResp asientoResponse
	if err := json.Unmarshal(rawBody, &okResp); err != nil {
		return nil, fmt.Errorf("contabilidad: deserializar respuesta: %w", err)
	}
	if okResp.ID == "" {
		return nil, fmt.Errorf("contabilidad: respuesta sin identificador de asiento")
	}

	return &contabilidad.Resultado{ExternalID: okResp.ID, Cuerpo: string(rawBody)}, nil
}
