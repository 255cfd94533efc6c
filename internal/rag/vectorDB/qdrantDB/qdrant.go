package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/svemula/chatvector/internal/config"
	"github.com/svemula/chatvector/internal/domain/messageModel"
	"github.com/svemula/chatvector/pkg/logger_i"
)

var dimension = uint64(config.EmbeddingDimensionality)

// pointID maps a message id onto a Qdrant point id. The server only accepts
// UUIDs (or unsigned ints) as point ids while the API accepts any non-empty
// message id, so other ids map to a deterministic name-based UUID;
// re-ingesting the same message still overwrites the same point.
func pointID(id string) *qdrant.PointId {
	if _, err := uuid.Parse(id); err == nil {
		return qdrant.NewID(id)
	}
	return qdrant.NewID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String())
}

type ClientHolder struct {
	QObj   *qdrant.Client
	logger *logger_i.Logger

	//collections verified (or created) this process lifetime
	mu    sync.Mutex
	known map[string]bool
}

// NewQdrantIndex connects to Qdrant and verifies the message and cache
// collections up front. The connection is closed when ctx is cancelled.
func NewQdrantIndex(ctx context.Context) (*ClientHolder, error) {
	logger := logger_i.NewLogger("Qdrant")

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}

	db := &ClientHolder{QObj: client, logger: logger, known: make(map[string]bool)}

	if err := db.ensureCollection(ctx, config.MessageIndexName); err != nil {
		return nil, fmt.Errorf("message collection init: %w", err)
	}
	if err := db.ensureCollection(ctx, config.SemanticCacheIndexName); err != nil {
		logger.Error("Semantic cache collection creation failed", "error", err)
	}

	go closeQdrant(ctx, db)
	return db, nil
}

func closeQdrant(ctx context.Context, db *ClientHolder) {
	<-ctx.Done()
	db.logger.Info("Shutting down Qdrant")
	if err := db.QObj.Close(); err != nil {
		db.logger.Error("could not close Qdrant: ", "error:", err)
	}
}

// ensureCollection is the lazy, idempotent index check: create on first use
// with the right dimensionality, remember the answer afterwards.
func (db *ClientHolder) ensureCollection(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("empty collection name")
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if db.known[name] {
		return nil
	}

	exists, err := db.QObj.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		err = db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: name,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     dimension,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return err
		}
	}
	db.known[name] = true
	return nil
}

func (db *ClientHolder) Upsert(ctx context.Context, namespace string, vectors []messageModel.EmbeddingVector) error {
	if namespace == "" {
		namespace = config.MessageIndexName
	}
	if err := db.ensureCollection(ctx, namespace); err != nil {
		return err
	}

	points := make([]*qdrant.PointStruct, len(vectors))
	for i, v := range vectors {
		points[i] = &qdrant.PointStruct{
			Id:      pointID(v.Id),
			Vectors: qdrant.NewVectors(v.Values...),
			Payload: qdrant.NewValueMap(v.Metadata),
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, config.VectorCallTimeout)
	defer cancel()

	_, err := db.QObj.Upsert(callCtx, &qdrant.UpsertPoints{
		CollectionName: namespace,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]messageModel.SearchMatch, error) {
	loggr := db.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if namespace == "" {
		namespace = config.MessageIndexName
	}
	if err := db.ensureCollection(ctx, namespace); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, config.VectorCallTimeout)
	defer cancel()

	result, err := db.QObj.Query(callCtx, &qdrant.QueryPoints{
		CollectionName: namespace,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	matches := make([]messageModel.SearchMatch, 0, len(result))
	for _, hit := range result {
		matches = append(matches, messageModel.SearchMatch{
			Id:        hit.Payload["message_id"].GetStringValue(),
			Score:     hit.Score,
			Content:   hit.Payload["content"].GetStringValue(),
			UserId:    hit.Payload["user_id"].GetStringValue(),
			ChannelId: hit.Payload["channel_id"].GetStringValue(),
			Timestamp: time.Unix(hit.Payload["timestamp"].GetIntegerValue(), 0).UTC(),
		})
	}

	loggr.Debug("Vector query done", "matches", len(matches))
	return matches, nil
}
