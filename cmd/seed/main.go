package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sngm3741/book-review-api/internal/config"
	mongodoc "github.com/sngm3741/book-review-api/internal/infrastructure/mongo"
	"github.com/sngm3741/book-review-api/internal/logger"
	"github.com/sngm3741/book-review-api/internal/public/domain"
)

type seedOptions struct {
	envName         string
	reviewCount     int
	dropCollections bool
	randomSeed      int64
}

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := loadEnvFiles(opts.envName); err != nil {
		fmt.Fprintf(os.Stderr, "環境変数の読み込みに失敗しました: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定の読み込みに失敗: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.Development(), os.Stdout)

	if err := run(cfg, opts, log); err != nil {
		log.Fatal().Err(err).Msg("Seed に失敗しました")
	}
}

func run(cfg config.Config, opts seedOptions, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("MongoDB 接続に失敗しました: %w", err)
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	db := client.Database(cfg.MongoDatabase)

	if opts.dropCollections {
		if err := db.Collection(cfg.ReviewCollection).Drop(ctx); err != nil {
			return fmt.Errorf("コレクション削除に失敗しました: %w", err)
		}
		log.Info().Str("collection", cfg.ReviewCollection).Msg("既存コレクションを削除しました")
	}

	repo := mongodoc.NewReviewRepository(db, cfg.ReviewCollection)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("インデックス作成に失敗しました: %w", err)
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))
	inserted := 0
	for _, draft := range generateDrafts(rng, opts.reviewCount) {
		if _, err := repo.Insert(ctx, draft); err != nil {
			return fmt.Errorf("レビューの挿入に失敗しました (%d 件目): %w", inserted+1, err)
		}
		inserted++
	}

	log.Info().
		Int("reviews", inserted).
		Str("db", cfg.MongoDatabase).
		Str("env", opts.envName).
		Int64("seed", opts.randomSeed).
		Msg("Seed 完了")
	return nil
}

func parseFlags(flags *flag.FlagSet, args []string) (seedOptions, error) {
	var opts seedOptions
	flags.StringVar(&opts.envName, "env", "local", "env ディレクトリ内の env ファイル名 (例: local, staging)")
	flags.IntVar(&opts.reviewCount, "count", 20, "生成するレビュー数")
	flags.BoolVar(&opts.dropCollections, "drop", false, "既存コレクションを削除してから投入する")
	flags.Int64Var(&opts.randomSeed, "seed", time.Now().UnixNano(), "乱数シード（再現用）")
	if err := flags.Parse(args); err != nil {
		return seedOptions{}, err
	}

	if opts.reviewCount <= 0 {
		return seedOptions{}, errors.New("count は 1 以上を指定してください")
	}
	return opts, nil
}

// loadEnvFiles reads env/shared.env and env/<name>.env when present, then a
// local .env. Files that do not exist are skipped.
func loadEnvFiles(envName string) error {
	files := []string{
		filepath.Join("env", "shared.env"),
		filepath.Join("env", envName+".env"),
		".env",
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%s の読み込みに失敗しました: %w", file, err)
		}
	}
	return nil
}

var (
	reviewerNames = []string{
		"Aiko", "Ben", "Chloe", "Daichi", "Emma", "Felix", "Hana", "Isaac",
		"Julia", "Kenji", "Lena", "Mateo", "Nora", "Oliver", "Priya", "Sora",
	}
	reviewComments = []string{
		"Could not put it down. Finished it in one weekend.",
		"Beautifully written, although the middle drags a little.",
		"The characters felt real and the ending surprised me.",
		"Good ideas but the pacing was uneven.",
		"A comforting read for a rainy evening.",
		"I expected more from the second half.",
		"Already recommended it to three friends.",
		"Dense at times, but worth the effort.",
		"Not my kind of story, the prose is lovely though.",
		"The best book I have read this year.",
	}
)

// generateDrafts returns n drafts that satisfy the submission rules.
func generateDrafts(rng *rand.Rand, n int) []domain.ReviewDraft {
	drafts := make([]domain.ReviewDraft, 0, n)
	for i := 0; i < n; i++ {
		drafts = append(drafts, domain.ReviewDraft{
			Name:    reviewerNames[rng.Intn(len(reviewerNames))],
			Rating:  domain.MinRating + rng.Intn(domain.MaxRating-domain.MinRating+1),
			Comment: reviewComments[rng.Intn(len(reviewComments))],
		})
	}
	return drafts
}
