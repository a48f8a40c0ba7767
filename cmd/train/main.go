// Command train fits the persona linker on a listings CSV and writes a model bundle.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/Darksun1310/forensic-persona-linker/config"
	"github.com/Darksun1310/forensic-persona-linker/internal/infrastructure/artifact"
	"github.com/Darksun1310/forensic-persona-linker/internal/infrastructure/dataset"
	"github.com/Darksun1310/forensic-persona-linker/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dataPath := flag.String("data", cfg.Training.DataPath, "listings CSV to train on")
	outPath := flag.String("out", cfg.Model.BundlePath, "where to write the model bundle")
	seed := flag.Int64("seed", cfg.Training.Seed, "random seed for pair generation and the split")
	testFraction := flag.Float64("test-fraction", cfg.Training.TestFraction, "share of pairs held out for evaluation")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	started := time.Now()
	listings, err := dataset.LoadFile(*dataPath)
	if err != nil {
		log.Fatalf("[DATASET] %v", err)
	}
	listings, dropped := dataset.Clean(listings, func(raw string) bool {
		_, ok := usecase.ParsePriceStrict(raw)
		return ok
	})
	log.Printf("[DATASET] %d usable listings, %d dropped", len(listings), dropped)

	trainer := usecase.NewTrainingService(usecase.TrainingConfig{
		Seed:           *seed,
		TestFraction:   *testFraction,
		MaxFeatures:    cfg.Training.MaxFeatures,
		PairsPerVendor: cfg.Training.PairsPerVendor,
		Classifier: usecase.LogisticConfig{
			Epochs:       cfg.Training.Epochs,
			LearningRate: cfg.Training.LearningRate,
			L2:           cfg.Training.L2,
		},
	})
	bundle, err := trainer.Train(ctx, listings)
	if err != nil {
		log.Fatalf("[TRAIN] %v", err)
	}

	if err := artifact.Save(*outPath, bundle); err != nil {
		log.Fatalf("[BUNDLE] %v", err)
	}
	log.Printf("[BUNDLE] wrote run %s to %s in %s", bundle.RunID, *outPath, time.Since(started).Round(time.Millisecond))
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime)
	log.SetOutput(os.Stdout)
}
