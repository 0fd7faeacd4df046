package domain

import (
	"io"
	"time"
)

type PersonalDetails struct {
	FullName            string   `json:"fullName"`
	ContactNo           string   `json:"contactNo"`
	AlternateContactNo  string   `json:"alternateContactNo,omitempty"`
	Email               string   `json:"email"`
	CurrentAddressLine1 string   `json:"currentAddressLine1"`
	CurrentAddressLine2 string   `json:"currentAddressLine2,omitempty"`
	CurrentCity         string   `json:"currentCity"`
	CurrentState        string   `json:"currentState"`
	CurrentPincode      string   `json:"currentPincode"`
	CommunicationMode   []string `json:"communicationMode"`
}

type PropertyDetails struct {
	PropertyAddressLine1 string   `json:"propertyAddressLine1"`
	PropertyAddressLine2 string   `json:"propertyAddressLine2,omitempty"`
	PropertyCity         string   `json:"propertyCity"`
	PropertyState        string   `json:"propertyState"`
	PropertyPincode      string   `json:"propertyPincode"`
	PropertyName         string   `json:"propertyName"`
	PropertyType         string   `json:"propertyType"`
	BHKType              string   `json:"bhkType"`
	FurnishingStatus     string   `json:"furnishingStatus"`
	PropertyPrice        float64  `json:"propertyPrice"`
	SecurityDeposit      float64  `json:"securityDeposit"`
	Amenities            []string `json:"amenities"`
}

// Documents holds the public URLs of the stored files, per upload field.
// Every list is non-nil.
type Documents struct {
	IdentityProof  []string `json:"identityProof"`
	OwnershipProof []string `json:"ownershipProof"`
	PropertyPhotos []string `json:"propertyPhotos"`
	FloorPlan      []string `json:"floorPlan"`
}

func (d Documents) Count() int {
	return len(d.IdentityProof) + len(d.OwnershipProof) + len(d.PropertyPhotos) + len(d.FloorPlan)
}

type Property struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	PersonalDetails PersonalDetails `json:"personalDetails"`
	PropertyDetails PropertyDetails `json:"propertyDetails"`
	Documents       Documents       `json:"documents"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Upload field names accepted on registration.
const (
	FieldIdentityProof  = "identityProof"
	FieldOwnershipProof = "ownershipProof"
	FieldPropertyPhotos = "propertyPhotos"
	FieldFloorPlan      = "floorPlan"
)

// UploadFields lists the accepted fields in document order with their caps.
var UploadFields = []struct {
	Name     string
	MaxCount int
}{
	{FieldIdentityProof, 2},
	{FieldOwnershipProof, 2},
	{FieldPropertyPhotos, 10},
	{FieldFloorPlan, 2},
}

// File is one uploaded part. Open is called once, by the goroutine that
// streams it to storage.
type File struct {
	Field       string
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Object is what gets written to the object store.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
	Metadata    map[string]string
}
