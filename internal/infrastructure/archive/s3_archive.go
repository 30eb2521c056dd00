package archive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jhoicas/fieldstock-api/internal/application/inventory"
)

var _ inventory.UploadArchive = (*S3Archive)(nil)

// ObjectPutter subconjunto de *s3.Client usado por el archivo.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configuración del bucket de archivo.
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // opcional (MinIO, LocalStack)
}

// S3Archive guarda los archivos originales de las cargas masivas en S3.
type S3Archive struct {
	client ObjectPutter
	bucket string
}

// NewS3Client construye el cliente S3 a partir de la cadena de credenciales por defecto de AWS.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Archive construye el archivo sobre un cliente (en producción, NewS3Client).
func NewS3Archive(client ObjectPutter, bucket string) *S3Archive {
	return &S3Archive{client: client, bucket: bucket}
}

// Store sube el archivo bajo key y devuelve su ubicación s3://bucket/key.
// El SHA-256 del contenido queda en la metadata del objeto.
func (a *S3Archive) Store(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	sum := sha256.Sum256(data)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		Metadata:      map[string]string{"sha256": hex.EncodeToString(sum[:])},
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return "s3://" + a.bucket + "/" + key, nil
}
