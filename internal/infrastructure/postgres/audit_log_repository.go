package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/klauspost/compress/zstd"

	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// Algoritmos de la columna compression_algo.
const (
	compressionNone = "none"
	compressionZstd = "zstd"
)

// compressionThreshold payloads (before + after) mayores se guardan comprimidos en changes_compressed.
const compressionThreshold = 10 * 1024

type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// EncodeAll/DecodeAll son seguros para uso concurrente: un codec por proceso.
var auditCodec = sync.OnceValues(func() (*zstdCodec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &zstdCodec{enc: enc, dec: dec}, nil
})

// auditChanges forma del payload comprimido.
type auditChanges struct {
	Before json.RawMessage `json:"before,omitempty"`
	After  json.RawMessage `json:"after,omitempty"`
}

// encodeChanges decide entre columnas JSONB planas o el blob zstd.
func encodeChanges(before, after json.RawMessage) (b, a json.RawMessage, compressed []byte, algo string, err error) {
	if len(before)+len(after) <= compressionThreshold {
		return before, after, nil, compressionNone, nil
	}
	codec, err := auditCodec()
	if err != nil {
		return nil, nil, nil, "", err
	}
	raw, err := json.Marshal(auditChanges{Before: before, After: after})
	if err != nil {
		return nil, nil, nil, "", fmt.Errorf("marshal audit changes: %w", err)
	}
	return nil, nil, codec.enc.EncodeAll(raw, nil), compressionZstd, nil
}

func decodeChanges(compressed []byte) (before, after json.RawMessage, err error) {
	codec, err := auditCodec()
	if err != nil {
		return nil, nil, err
	}
	raw, err := codec.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("decompress audit changes: %w", err)
	}
	var ch auditChanges
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, nil, fmt.Errorf("unmarshal audit changes: %w", err)
	}
	return ch.Before, ch.After, nil
}

// AuditLogRepo trilha append-only sobre PostgreSQL (usable con pool o tx).
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Append inserta la entrada; nunca se actualiza ni borra.
func (r *AuditLogRepo) Append(ctx context.Context, log *entity.AuditLog) error {
	before, after, compressed, algo, err := encodeChanges(log.Before, log.After)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO audit_logs (id, company_id, entity_name, entity_id, action, before, after,
			changes_compressed, compression_algo, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.q.Exec(ctx, query,
		log.ID, log.CompanyID, log.EntityName, log.EntityID, log.Action,
		nullJSON(before), nullJSON(after), compressed, algo, log.Actor, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// Find devuelve las entradas más recientes primero.
func (r *AuditLogRepo) Find(ctx context.Context, filter repository.AuditFilter) ([]*entity.AuditLog, error) {
	q := psql.Select("id", "company_id", "entity_name", "entity_id", "action", "before", "after",
		"changes_compressed", "compression_algo", "actor", "created_at").
		From("audit_logs").
		Where(squirrel.Eq{"company_id": filter.CompanyID})
	if filter.EntityName != "" {
		q = q.Where(squirrel.Eq{"entity_name": filter.EntityName})
	}
	if filter.EntityID != "" {
		q = q.Where(squirrel.Eq{"entity_id": filter.EntityID})
	}
	if filter.Action != "" {
		q = q.Where(squirrel.Eq{"action": filter.Action})
	}
	if filter.Since != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.Since})
	}
	q = paginate(q.OrderBy("created_at DESC"), filter.Limit, filter.Offset)

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find audit logs: %w", err)
	}
	defer rows.Close()

	var list []*entity.AuditLog
	for rows.Next() {
		var (
			e          entity.AuditLog
			before     []byte
			after      []byte
			compressed []byte
			algo       string
			createdAt  time.Time
		)
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.EntityName, &e.EntityID, &e.Action,
			&before, &after, &compressed, &algo, &e.Actor, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		e.Before, e.After, e.CreatedAt = before, after, createdAt
		if algo == compressionZstd && len(compressed) > 0 {
			if e.Before, e.After, err = decodeChanges(compressed); err != nil {
				return nil, err
			}
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

// nullJSON evita insertar un jsonb vacío (inválido); nil se guarda como NULL.
func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
