package retrieve

import (
	"context"
	"fmt"

	"docrag-be/internal/repository/unitofwork"
	"docrag-be/pkg/embedding"

	"github.com/google/uuid"
)

// VectorRetriever embeds the query and ranks the session's passages by
// cosine similarity in the backing store.
type VectorRetriever struct {
	uowFactory unitofwork.RepositoryFactory
	embedder   embedding.EmbeddingProvider
	threshold  float64
}

func NewVectorRetriever(uowFactory unitofwork.RepositoryFactory, embedder embedding.EmbeddingProvider, threshold float64) *VectorRetriever {
	return &VectorRetriever{
		uowFactory: uowFactory,
		embedder:   embedder,
		threshold:  threshold,
	}
}

func (r *VectorRetriever) Search(ctx context.Context, sessionId uuid.UUID, query string, topK int) ([]Passage, error) {
	resp, err := r.embedder.Generate(query, "retrieval_query")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.PassageRepository().SearchSimilarWithScore(ctx, sessionId, resp.Embedding.Values, topK, r.threshold)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	passages := make([]Passage, len(scored))
	for i, s := range scored {
		passages[i] = Passage{
			Source:  s.Passage.Source,
			Page:    s.Passage.Page,
			Content: s.Passage.Content,
			Score:   s.Similarity,
		}
	}
	return passages, nil
}

func (r *VectorRetriever) Purge(ctx context.Context, sessionId uuid.UUID) error {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	return uow.PassageRepository().DeleteBySessionId(ctx, sessionId)
}
