package s3

import (
	"bytes"
	"context"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/studentaid/disbursement/internal/config"
	ierr "github.com/studentaid/disbursement/internal/errors"
)

var validDocumentTypes = []DocumentType{DocumentTypeECert, DocumentTypeECertFeedback}

// Service keeps archive copies of every sent and received file
type Service interface {
	ArchiveDocument(ctx context.Context, document *Document) error
}

type s3ServiceImpl struct {
	client *s3.Client
	config *config.S3Config
}

// NewService returns nil when archiving is disabled
func NewService(config *config.Configuration) (Service, error) {
	if !config.S3.Enabled {
		return nil, nil
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(config.S3.Region),
	)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load aws config").
			Mark(ierr.ErrHTTPClient)
	}

	return &s3ServiceImpl{
		config: &config.S3,
		client: s3.NewFromConfig(awsCfg),
	}, nil
}

// ObjectKey is <prefix>/<type>/<yyyy>/<mm>/<name>
func ObjectKey(prefix string, document *Document) (string, error) {
	switch document.Type {
	case DocumentTypeECert, DocumentTypeECertFeedback:
	default:
		return "", ierr.NewErrorf("invalid doc type: %s", document.Type).
			WithHintf("valid doc types are: %v", validDocumentTypes).
			Mark(ierr.ErrSystem)
	}
	if document.Name == "" {
		return "", ierr.NewError("document name is required").Mark(ierr.ErrValidation)
	}
	return path.Join(prefix, string(document.Type), document.Date.Format("2006/01"), document.Name), nil
}

func (s *s3ServiceImpl) ArchiveDocument(ctx context.Context, document *Document) error {
	key, err := ObjectKey(s.config.KeyPrefix, document)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(document.Data),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return ierr.WithError(err).WithHint("failed to archive document").
			WithMessagef("bucket:%s, key:%s", s.config.Bucket, key).
			Mark(ierr.ErrHTTPClient)
	}

	return nil
}
