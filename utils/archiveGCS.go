package utils

import (
	"context"
	"io"
	"os"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// getGoogleClient initializes a Google Cloud Storage client.
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC (GOOGLE_APPLICATION_CREDENTIALS / workload identity).
	// For local runs explicit JSON can be provided via GCS_CREDENTIALS_JSON.
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	}
	return storage.NewClient(ctx)
}

// ArchiveFileToGCS mirrors a versioned snapshot into the archival bucket
// under snapshots/<objectName>. Returns (false, nil) when no bucket is
// configured. Callers treat any error as a warning: off-site archival is
// best effort and never invalidates a produced report.
func ArchiveFileToGCS(ctx context.Context, localPath, objectName string) (bool, error) {
	bucketName := strings.TrimSpace(os.Getenv("GCS_BUCKET"))
	if bucketName == "" {
		return false, nil
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return false, err
	}
	defer client.Close()

	in, err := os.Open(localPath)
	if err != nil {
		return false, err
	}
	defer in.Close()

	obj := client.Bucket(bucketName).Object(path.Join("snapshots", objectName))
	w := obj.NewWriter(ctx)
	w.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if _, err := io.Copy(w, in); err != nil {
		w.Close()
		return false, err
	}
	if err := w.Close(); err != nil {
		return false, err
	}
	return true, nil
}
