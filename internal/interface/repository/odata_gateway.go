package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flightdesk-service/internal/domain/entity"
	"flightdesk-service/internal/domain/repository"
	"flightdesk-service/pkg/logger"
)

// ODataGateway implements CollectionGateway and RelatedCollectionGateway
// against an OData v2 entity set
type ODataGateway struct {
	client    *http.Client
	baseURL   string
	entitySet string
	fields    []string
	logger    logger.Logger
}

var _ repository.RelatedCollectionGateway = (*ODataGateway)(nil)

// NewODataGateway creates a gateway for entitySet under baseURL. fields
// orders the properties of fetched records; properties not listed follow
// by name. A nil client gets a 30s default.
func NewODataGateway(client *http.Client, baseURL, entitySet string, fields []string, logger logger.Logger) repository.CollectionGateway {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ODataGateway{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		entitySet: entitySet,
		fields:    fields,
		logger:    logger,
	}
}

type odataResults struct {
	D struct {
		Results []map[string]interface{} `json:"results"`
	} `json:"d"`
}

type odataError struct {
	Error struct {
		Code    string `json:"code"`
		Message struct {
			Value string `json:"value"`
		} `json:"message"`
	} `json:"error"`
}

// FetchAll reads the whole entity set
func (g *ODataGateway) FetchAll(ctx context.Context) (entity.Collection, error) {
	col, err := g.fetch(ctx, g.entitySet)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Fetched entity set", "entitySet", g.entitySet, "count", len(col))
	return col, nil
}

// FetchRelated reads the set reached from the entity addressed by key
// through the navigation property, e.g. BusinessPartnerSet('1')/ToSalesOrders
func (g *ODataGateway) FetchRelated(ctx context.Context, key []entity.KeyField, navigation string) (entity.Collection, error) {
	if navigation == "" {
		return nil, fmt.Errorf("empty navigation property for %s: %w", g.entitySet, entity.ErrInvalidKey)
	}
	path, err := EntityPath(g.entitySet, key)
	if err != nil {
		return nil, err
	}

	col, err := g.fetch(ctx, path+"/"+url.PathEscape(navigation))
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Fetched related set", "path", path, "navigation", navigation, "count", len(col))
	return col, nil
}

func (g *ODataGateway) fetch(ctx context.Context, path string) (entity.Collection, error) {
	u := fmt.Sprintf("%s/%s?$format=json", g.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}

	// numbers stay json.Number so integers keep their digits
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var body odataResults
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	col := make(entity.Collection, 0, len(body.D.Results))
	for _, raw := range body.D.Results {
		col = append(col, g.toRecord(raw))
	}
	return col, nil
}

// Create posts record as a new entity
func (g *ODataGateway) Create(ctx context.Context, record entity.Record) error {
	payload := make(map[string]string, record.Len())
	for _, f := range record.Fields() {
		payload[f.Name] = f.Value
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	u := fmt.Sprintf("%s/%s", g.baseURL, g.entitySet)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, http.StatusCreated, http.StatusOK, http.StatusNoContent); err != nil {
		return err
	}

	g.logger.Info("Entity created", "entitySet", g.entitySet, "record", record.String())
	return nil
}

// DeleteByKey removes the entity addressed by key
func (g *ODataGateway) DeleteByKey(ctx context.Context, key []entity.KeyField) error {
	path, err := EntityPath(g.entitySet, key)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, g.baseURL+"/"+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, http.StatusNoContent, http.StatusOK); err != nil {
		return err
	}

	g.logger.Info("Entity deleted", "path", path)
	return nil
}

// EntityPath builds the keyed resource path, e.g.
// WASet(Carrid='AA',Connid='1'). Values are quoted and escaped in key order.
func EntityPath(entitySet string, key []entity.KeyField) (string, error) {
	if len(key) == 0 {
		return "", fmt.Errorf("empty key for %s: %w", entitySet, entity.ErrInvalidKey)
	}

	parts := make([]string, len(key))
	for i, k := range key {
		if k.Name == "" {
			return "", fmt.Errorf("unnamed key field at position %d: %w", i, entity.ErrInvalidKey)
		}
		quoted := strings.ReplaceAll(k.Value, "'", "''")
		parts[i] = fmt.Sprintf("%s='%s'", k.Name, url.PathEscape(quoted))
	}
	return fmt.Sprintf("%s(%s)", entitySet, strings.Join(parts, ",")), nil
}

// checkStatus maps an unexpected response status to a gateway error
func checkStatus(resp *http.Response, ok ...int) error {
	for _, code := range ok {
		if resp.StatusCode == code {
			return nil
		}
	}

	msg := readErrorMessage(resp.Body)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("odata returned status %d: %s: %w", resp.StatusCode, msg, entity.ErrNotFound)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("odata returned status %d: %s: %w", resp.StatusCode, msg, entity.ErrDuplicateKey)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("odata returned status %d: %s: %w", resp.StatusCode, msg, entity.ErrConflict)
	default:
		return fmt.Errorf("odata returned status %d: %s", resp.StatusCode, msg)
	}
}

func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil || len(data) == 0 {
		return "no details"
	}

	var oe odataError
	if json.Unmarshal(data, &oe) == nil && oe.Error.Message.Value != "" {
		return oe.Error.Message.Value
	}
	return strings.TrimSpace(string(data))
}

func (g *ODataGateway) toRecord(raw map[string]interface{}) entity.Record {
	values := make(map[string]string, len(raw))
	for name, v := range raw {
		// Skip __metadata and navigation properties
		if strings.HasPrefix(name, "__") {
			continue
		}
		switch val := v.(type) {
		case nil:
			values[name] = ""
		case string:
			values[name] = val
		case json.Number:
			values[name] = val.String()
		case map[string]interface{}, []interface{}:
			continue
		default:
			values[name] = fmt.Sprint(val)
		}
	}
	return entity.RecordFromMap(values, g.fields)
}
