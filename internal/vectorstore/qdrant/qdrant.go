// Package qdrant stores chunk records in a Qdrant collection over gRPC.
package qdrant

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"pdfrag/internal/domain"
	"pdfrag/internal/vectorstore"
)

const (
	textKey        = "text"
	scrollPageSize = 256
)

// Storage is a Qdrant-backed vector store using cosine distance. ScanAll
// returns records in point id order, not insertion order.
type Storage struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	dimension   int
}

// New connects to the Qdrant gRPC endpoint at host:port.
func New(host string, port int, collection string) (*Storage, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &Storage{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// OpenOrCreate creates the collection with cosine distance if it is missing
// and checks the vector size of an existing one.
func (s *Storage) OpenOrCreate(ctx context.Context, dims int) error {
	if dims <= 0 {
		return errors.New("invalid dimension")
	}
	exists, err := s.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{CollectionName: s.collection})
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", s.collection, err)
	}
	if !exists.GetResult().GetExists() {
		_, err := s.collections.Create(ctx, &pb.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: &pb.VectorsConfig{Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{Size: uint64(dims), Distance: pb.Distance_Cosine},
			}},
		})
		if err != nil {
			return fmt.Errorf("creating collection %s: %w", s.collection, err)
		}
		s.dimension = dims
		return nil
	}

	info, err := s.collections.Get(ctx, &pb.GetCollectionInfoRequest{CollectionName: s.collection})
	if err != nil {
		return fmt.Errorf("reading collection %s: %w", s.collection, err)
	}
	size := info.GetResult().GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	if size != uint64(dims) {
		return fmt.Errorf("%w: collection %s has %d, requested %d", vectorstore.ErrDimensionMismatch, s.collection, size, dims)
	}
	s.dimension = dims
	return nil
}

// Append upserts chunks as new points with random UUIDs.
func (s *Storage) Append(ctx context.Context, chunks []domain.Chunk) error {
	if s.dimension == 0 {
		return vectorstore.ErrNotOpen
	}
	points := make([]*pb.PointStruct, len(chunks))
	for i, c := range chunks {
		if err := vectorstore.Validate(c, s.dimension); err != nil {
			return err
		}
		points[i] = toPoint(uuid.NewString(), c)
	}
	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	return err
}

// ScanAll pages through the whole collection with vectors attached.
func (s *Storage) ScanAll(ctx context.Context) ([]domain.Chunk, error) {
	out := []domain.Chunk{}
	limit := uint32(scrollPageSize)
	var offset *pb.PointId
	for {
		resp, err := s.points.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: s.collection,
			Offset:         offset,
			Limit:          &limit,
			WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
			WithVectors:    &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}},
		})
		if err != nil {
			return nil, err
		}
		for _, p := range resp.GetResult() {
			out = append(out, domain.Chunk{
				Vector: p.GetVectors().GetVector().GetData(),
				Text:   p.GetPayload()[textKey].GetStringValue(),
			})
		}
		offset = resp.GetNextPageOffset()
		if offset == nil {
			return out, nil
		}
	}
}

// Nearest searches by cosine similarity.
func (s *Storage) Nearest(ctx context.Context, query []float32, k int) ([]domain.Chunk, error) {
	if k <= 0 {
		return []domain.Chunk{}, nil
	}
	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         query,
		Limit:          uint64(k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
		WithVectors:    &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, err
	}
	results := make([]domain.Chunk, len(resp.GetResult()))
	for i, pt := range resp.GetResult() {
		results[i] = domain.Chunk{
			Vector: pt.GetVectors().GetVector().GetData(),
			Text:   pt.GetPayload()[textKey].GetStringValue(),
		}
	}
	return results, nil
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{CollectionName: s.collection, Exact: &exact})
	if err != nil {
		return 0, err
	}
	return int(resp.GetResult().GetCount()), nil
}

func (s *Storage) Close() error {
	return s.conn.Close()
}

func toPoint(id string, c domain.Chunk) *pb.PointStruct {
	return &pb.PointStruct{
		Id:      &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
		Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: c.Vector}}},
		Payload: map[string]*pb.Value{
			textKey: {Kind: &pb.Value_StringValue{StringValue: c.Text}},
		},
	}
}
