package repository

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"CityScape3D/internal/domain/model"
	"CityScape3D/internal/domain/repository"
)

// FirestoreSnapshotRepository Firestoreを使用した合成スナップショットリポジトリ
type FirestoreSnapshotRepository struct {
	client *firestore.Client
}

// NewFirestoreSnapshotRepository 新しいFirestoreSnapshotRepositoryインスタンスを作成
func NewFirestoreSnapshotRepository(client *firestore.Client) repository.GeometrySnapshotRepository {
	return &FirestoreSnapshotRepository{
		client: client,
	}
}

// SaveSnapshot スナップショットをFirestoreに保存し、生成したIDを返す
func (r *FirestoreSnapshotRepository) SaveSnapshot(ctx context.Context, snap *model.GeometrySnapshot, ttlHours int) (string, error) {
	if snap.ID == "" {
		snap.ID = fmt.Sprintf("snap_%s", uuid.New().String())
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}
	if ttlHours <= 0 {
		ttlHours = 24
	}
	snap.ExpiresAt = snap.CreatedAt.Add(time.Duration(ttlHours) * time.Hour)

	collection := r.client.Collection("geometrySnapshots")
	if _, err := collection.Doc(snap.ID).Set(ctx, snap); err != nil {
		log.Printf("❌ Failed to save geometry snapshot %s: %v", snap.ID, err)
		return "", fmt.Errorf("スナップショットの保存に失敗しました: %w", err)
	}

	log.Printf("✅ Geometry snapshot saved: %s (expires in %d hours)", snap.ID, ttlHours)
	return snap.ID, nil
}

// GetSnapshot 指定されたIDのスナップショットをFirestoreから取得する
func (r *FirestoreSnapshotRepository) GetSnapshot(ctx context.Context, id string) (*model.GeometrySnapshot, error) {
	doc, err := r.client.Collection("geometrySnapshots").Doc(id).Get(ctx)
	if err != nil {
		// Firestoreのエラータイプをチェック
		if status := err.Error(); strings.Contains(status, "NotFound") || strings.Contains(status, "not found") {
			return nil, fmt.Errorf("スナップショットが見つかりません（有効期限切れまたは無効なID）: %s", id)
		}
		return nil, fmt.Errorf("スナップショットの取得に失敗しました: %w", err)
	}

	var snap model.GeometrySnapshot
	if err := doc.DataTo(&snap); err != nil {
		return nil, fmt.Errorf("データの変換に失敗しました: %w", err)
	}

	log.Printf("✅ Geometry snapshot retrieved: %s", id)
	return &snap, nil
}
