package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/apperror"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/logger"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/validation"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/property/domain"
)

const cleanupTimeout = 30 * time.Second

type PersonalDetailsInput struct {
	FullName            string   `json:"fullName" validate:"required" msg:"Full name is required"`
	ContactNo           string   `json:"contactNo" validate:"required" msg:"Contact number is required"`
	AlternateContactNo  string   `json:"alternateContactNo"`
	Email               string   `json:"email" validate:"required,email" msg:"Please include a valid email"`
	CurrentAddressLine1 string   `json:"currentAddressLine1" validate:"required" msg:"Current address is required"`
	CurrentAddressLine2 string   `json:"currentAddressLine2"`
	CurrentCity         string   `json:"currentCity" validate:"required" msg:"Current city is required"`
	CurrentState        string   `json:"currentState" validate:"required" msg:"Current state is required"`
	CurrentPincode      string   `json:"currentPincode" validate:"required" msg:"Current pincode is required"`
	CommunicationMode   []string `json:"communicationMode"`
}

// PropertyDetailsInput takes price and deposit as raw JSON so both numbers
// and numeric strings are accepted.
type PropertyDetailsInput struct {
	PropertyAddressLine1 string          `json:"propertyAddressLine1" validate:"required" msg:"Property address is required"`
	PropertyAddressLine2 string          `json:"propertyAddressLine2"`
	PropertyCity         string          `json:"propertyCity" validate:"required" msg:"Property city is required"`
	PropertyState        string          `json:"propertyState" validate:"required" msg:"Property state is required"`
	PropertyPincode      string          `json:"propertyPincode" validate:"required" msg:"Property pincode is required"`
	PropertyName         string          `json:"propertyName" validate:"required" msg:"Property name is required"`
	PropertyType         string          `json:"propertyType" validate:"required" msg:"Property type is required"`
	BHKType              string          `json:"bhkType" validate:"required" msg:"BHK type is required"`
	FurnishingStatus     string          `json:"furnishingStatus" validate:"required" msg:"Furnishing status is required"`
	PropertyPrice        json.RawMessage `json:"propertyPrice"`
	SecurityDeposit      json.RawMessage `json:"securityDeposit"`
	Amenities            []string        `json:"amenities"`
}

type RegisterInput struct {
	UserID          string               `json:"-"`
	PersonalDetails PersonalDetailsInput `json:"personalDetails"`
	PropertyDetails PropertyDetailsInput `json:"propertyDetails"`
	Files           []domain.File        `json:"-"`
}

type PropertyUsecase struct {
	repo      domain.PropertyRepository
	storage   domain.ObjectStorage
	events    domain.EventPublisher
	uploads   domain.UploadObserver
	validator *validation.Validator
	logger    *logger.Logger
	tracer    trace.Tracer
	// parallelism caps concurrent uploads when positive. Per-field caps
	// already bound a request to 16 files, so the default is unlimited.
	parallelism int

	now         func() time.Time
	newUploadID func() string
}

func NewPropertyUsecase(
	repo domain.PropertyRepository,
	storage domain.ObjectStorage,
	events domain.EventPublisher,
	uploads domain.UploadObserver,
	log *logger.Logger,
) *PropertyUsecase {
	return &PropertyUsecase{
		repo:        repo,
		storage:     storage,
		events:      events,
		uploads:     uploads,
		validator:   validation.New(),
		logger:      log,
		tracer:      otel.Tracer("rentsetu/property"),
		now:         time.Now,
		newUploadID: newUploadID,
	}
}

// Register validates everything, uploads all files concurrently and then
// stores one property referencing them. Objects already stored are removed
// when any upload or the final insert fails.
func (uc *PropertyUsecase) Register(ctx context.Context, in RegisterInput) (*domain.Property, error) {
	ctx, span := uc.tracer.Start(ctx, "PropertyUsecase.Register")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", in.UserID), attribute.Int("files", len(in.Files)))

	fields := FileFieldErrors(in.Files)
	price, deposit, detailFields := uc.validateDetails(in)
	if fields = append(fields, detailFields...); len(fields) > 0 {
		return nil, apperror.Validation(fields...)
	}
	if err := validateEach(in.Files); err != nil {
		return nil, err
	}

	uc.logger.Info("PropertyUsecase.Register: uploading documents", "user_id", in.UserID, "files", len(in.Files))
	urls, err := uc.uploadAll(ctx, in.Files)
	if err != nil {
		uc.logger.Error("PropertyUsecase.Register: upload failed", "user_id", in.UserID, "error", err.Error())
		return nil, apperror.Wrap(apperror.KindUpstream, "failed to upload files", err)
	}

	now := uc.now()
	property := &domain.Property{
		UserID:          in.UserID,
		PersonalDetails: toPersonalDetails(in.PersonalDetails),
		PropertyDetails: toPropertyDetails(in.PropertyDetails, price, deposit),
		Documents:       assembleDocuments(in.Files, urls),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, property); err != nil {
		uc.logger.Error("PropertyUsecase.Register: failed to save property", "user_id", in.UserID, "error", err.Error())
		uc.cleanup(ctx, urls.keys())
		return nil, apperror.Wrap(apperror.KindPersistence, "failed to save property", err)
	}

	uc.logger.Info("PropertyUsecase.Register: property registered", "property_id", property.ID, "user_id", in.UserID)
	uc.publish(ctx, domain.SubjectPropertyRegistered, map[string]interface{}{
		"propertyId":    property.ID,
		"userId":        property.UserID,
		"documentCount": property.Documents.Count(),
	})
	return property, nil
}

// ListMine returns every property owned by userID, never nil.
func (uc *PropertyUsecase) ListMine(ctx context.Context, userID string) ([]*domain.Property, error) {
	ctx, span := uc.tracer.Start(ctx, "PropertyUsecase.ListMine")
	defer span.End()

	properties, err := uc.repo.FindByUserID(ctx, userID)
	if err != nil {
		uc.logger.Error("PropertyUsecase.ListMine: failed to fetch properties", "user_id", userID, "error", err.Error())
		return nil, apperror.Wrap(apperror.KindPersistence, "failed to fetch properties", err)
	}
	if properties == nil {
		properties = []*domain.Property{}
	}
	return properties, nil
}

// UploadFile streams one file to the object store under key.
func (uc *PropertyUsecase) UploadFile(ctx context.Context, f domain.File, key string) (url string, err error) {
	ctx, span := uc.tracer.Start(ctx, "PropertyUsecase.UploadFile",
		trace.WithAttributes(attribute.String("field", f.Field), attribute.String("key", key)))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
		if uc.uploads != nil {
			uc.uploads.UploadObserved(f.Field, err)
		}
	}()

	body, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer body.Close()

	url, err = uc.storage.Put(ctx, domain.Object{
		Key:         key,
		ContentType: f.ContentType,
		Size:        f.Size,
		Body:        body,
		Metadata: map[string]string{
			"resource-type": ResourceType(f.ContentType),
			"field":         f.Field,
		},
	})
	if err != nil {
		return "", fmt.Errorf("store %s: %w", key, err)
	}
	return url, nil
}

// uploaded is indexed like the request's files; an empty key means the file
// was not stored.
type uploaded struct {
	objectKeys []string
	urls       []string
}

func (u uploaded) keys() []string {
	out := make([]string, 0, len(u.objectKeys))
	for _, k := range u.objectKeys {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

func (uc *PropertyUsecase) uploadAll(ctx context.Context, files []domain.File) (uploaded, error) {
	res := uploaded{objectKeys: make([]string, len(files)), urls: make([]string, len(files))}
	if len(files) == 0 {
		return res, nil
	}

	names := uniqueNames(files)
	at := uc.now()
	requestID := uc.newUploadID()
	g, gctx := errgroup.WithContext(ctx)
	if uc.parallelism > 0 {
		g.SetLimit(uc.parallelism)
	}
	for i := range files {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			key := ObjectKey(files[i].Field, names[i], requestID, at)
			url, err := uc.UploadFile(gctx, files[i], key)
			if err != nil {
				return err
			}
			res.objectKeys[i] = key
			res.urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uc.cleanup(ctx, res.keys())
		return uploaded{}, err
	}
	return res, nil
}

// cleanup removes stored objects on a context detached from the request so
// a cancelled request still releases what it wrote.
func (uc *PropertyUsecase) cleanup(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	for _, key := range keys {
		if err := uc.storage.Remove(ctx, key); err != nil {
			uc.logger.Warn("PropertyUsecase.cleanup: failed to remove object", "key", key, "error", err.Error())
		}
	}
}

func (uc *PropertyUsecase) publish(ctx context.Context, subject string, data interface{}) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, subject, data); err != nil {
		uc.logger.Warn("PropertyUsecase: failed to publish event", "subject", subject, "error", err.Error())
	}
}

func (uc *PropertyUsecase) validateDetails(in RegisterInput) (float64, float64, []apperror.FieldError) {
	fields := uc.validator.Struct(in)
	price, ok := ParseNumeric(in.PropertyDetails.PropertyPrice)
	if !ok {
		fields = append(fields, apperror.FieldError{Field: "propertyDetails.propertyPrice", Message: "Property price is required"})
	}
	deposit, ok := ParseNumeric(in.PropertyDetails.SecurityDeposit)
	if !ok {
		fields = append(fields, apperror.FieldError{Field: "propertyDetails.securityDeposit", Message: "Security deposit is required"})
	}
	return price, deposit, fields
}

// ParseNumeric accepts a JSON number or a string holding one.
func ParseNumeric(raw json.RawMessage) (float64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return 0, false
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func assembleDocuments(files []domain.File, res uploaded) domain.Documents {
	docs := domain.Documents{
		IdentityProof:  []string{},
		OwnershipProof: []string{},
		PropertyPhotos: []string{},
		FloorPlan:      []string{},
	}
	for i, f := range files {
		switch f.Field {
		case domain.FieldIdentityProof:
			docs.IdentityProof = append(docs.IdentityProof, res.urls[i])
		case domain.FieldOwnershipProof:
			docs.OwnershipProof = append(docs.OwnershipProof, res.urls[i])
		case domain.FieldPropertyPhotos:
			docs.PropertyPhotos = append(docs.PropertyPhotos, res.urls[i])
		case domain.FieldFloorPlan:
			docs.FloorPlan = append(docs.FloorPlan, res.urls[i])
		}
	}
	return docs
}

func toPersonalDetails(in PersonalDetailsInput) domain.PersonalDetails {
	return domain.PersonalDetails{
		FullName:            in.FullName,
		ContactNo:           in.ContactNo,
		AlternateContactNo:  in.AlternateContactNo,
		Email:               in.Email,
		CurrentAddressLine1: in.CurrentAddressLine1,
		CurrentAddressLine2: in.CurrentAddressLine2,
		CurrentCity:         in.CurrentCity,
		CurrentState:        in.CurrentState,
		CurrentPincode:      in.CurrentPincode,
		CommunicationMode:   nonNil(in.CommunicationMode),
	}
}

func toPropertyDetails(in PropertyDetailsInput, price, deposit float64) domain.PropertyDetails {
	return domain.PropertyDetails{
		PropertyAddressLine1: in.PropertyAddressLine1,
		PropertyAddressLine2: in.PropertyAddressLine2,
		PropertyCity:         in.PropertyCity,
		PropertyState:        in.PropertyState,
		PropertyPincode:      in.PropertyPincode,
		PropertyName:         in.PropertyName,
		PropertyType:         in.PropertyType,
		BHKType:              in.BHKType,
		FurnishingStatus:     in.FurnishingStatus,
		PropertyPrice:        price,
		SecurityDeposit:      deposit,
		Amenities:            nonNil(in.Amenities),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
