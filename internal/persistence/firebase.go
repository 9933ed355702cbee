package persistence

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/spec-kit/service-marketplace/internal/config"
)

// Firebase bundles the Auth and Firestore clients of one Firebase project.
type Firebase struct {
	Auth      *fbauth.Client
	Firestore *firestore.Client
}

// NewFirebase initializes the Admin SDK. It returns nil when no credentials
// are configured.
func NewFirebase(ctx context.Context, cfg config.FirebaseConfig, withFirestore bool, logger *zap.Logger) (*Firebase, error) {
	if cfg.CredentialsPath == "" {
		logger.Warn("FIREBASE_CREDENTIALS_PATH not provided; firebase disabled")
		return nil, nil
	}

	var appCfg *firebase.Config
	if cfg.ProjectID != "" {
		appCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, appCfg, option.WithCredentialsFile(cfg.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}

	fb := &Firebase{Auth: authClient}
	if withFirestore {
		fs, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get Firestore client: %w", err)
		}
		fb.Firestore = fs
	}

	logger.Info("firebase initialized", zap.Bool("firestore", withFirestore))
	return fb, nil
}

// Close releases the Firestore connection.
func (f *Firebase) Close() {
	if f != nil && f.Firestore != nil {
		_ = f.Firestore.Close()
	}
}

// Ping checks Firestore reachability with a cheap read.
func (f *Firebase) Ping(ctx context.Context, collection string) error {
	if f == nil || f.Firestore == nil {
		return fmt.Errorf("firestore not configured")
	}
	_, err := f.Firestore.Collection(collection).Limit(1).Documents(ctx).GetAll()
	return err
}
