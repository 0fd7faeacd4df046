package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authdomain "github.com/Monkfuego/rentsetu-prereleasebe/internal/auth/domain"
	propdomain "github.com/Monkfuego/rentsetu-prereleasebe/internal/property/domain"
)

const (
	usersCollection      = "users"
	propertiesCollection = "properties"
)

func bsonKey(field string) bson.D {
	return bson.D{{Key: field, Value: 1}}
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	Email        string             `bson:"email"`
	Password     string             `bson:"password"`
	OTP          *string            `bson:"otp"`
	OTPExpires   *time.Time         `bson:"otp_expires"`
	RefreshToken *string            `bson:"refresh_token"`
	IsVerified   bool               `bson:"is_verified"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d *userDocument) toDomain() *authdomain.User {
	return &authdomain.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.Password,
		OTP:          d.OTP,
		OTPExpires:   d.OTPExpires,
		RefreshToken: d.RefreshToken,
		IsVerified:   d.IsVerified,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type personalDetailsDocument struct {
	FullName            string   `bson:"full_name"`
	ContactNo           string   `bson:"contact_no"`
	AlternateContactNo  string   `bson:"alternate_contact_no,omitempty"`
	Email               string   `bson:"email"`
	CurrentAddressLine1 string   `bson:"current_address_line1"`
	CurrentAddressLine2 string   `bson:"current_address_line2,omitempty"`
	CurrentCity         string   `bson:"current_city"`
	CurrentState        string   `bson:"current_state"`
	CurrentPincode      string   `bson:"current_pincode"`
	CommunicationMode   []string `bson:"communication_mode"`
}

type propertyDetailsDocument struct {
	PropertyAddressLine1 string   `bson:"property_address_line1"`
	PropertyAddressLine2 string   `bson:"property_address_line2,omitempty"`
	PropertyCity         string   `bson:"property_city"`
	PropertyState        string   `bson:"property_state"`
	PropertyPincode      string   `bson:"property_pincode"`
	PropertyName         string   `bson:"property_name"`
	PropertyType         string   `bson:"property_type"`
	BHKType              string   `bson:"bhk_type"`
	FurnishingStatus     string   `bson:"furnishing_status"`
	PropertyPrice        float64  `bson:"property_price"`
	SecurityDeposit      float64  `bson:"security_deposit"`
	Amenities            []string `bson:"amenities"`
}

type documentsDocument struct {
	IdentityProof  []string `bson:"identity_proof"`
	OwnershipProof []string `bson:"ownership_proof"`
	PropertyPhotos []string `bson:"property_photos"`
	FloorPlan      []string `bson:"floor_plan"`
}

type propertyDocument struct {
	ID              primitive.ObjectID      `bson:"_id"`
	UserID          primitive.ObjectID      `bson:"user_id"`
	PersonalDetails personalDetailsDocument `bson:"personal_details"`
	PropertyDetails propertyDetailsDocument `bson:"property_details"`
	Documents       documentsDocument       `bson:"documents"`
	CreatedAt       time.Time               `bson:"created_at"`
	UpdatedAt       time.Time               `bson:"updated_at"`
}

func newPropertyDocument(p *propdomain.Property, id, userID primitive.ObjectID) propertyDocument {
	pd, dd, docs := p.PersonalDetails, p.PropertyDetails, p.Documents
	return propertyDocument{
		ID:     id,
		UserID: userID,
		PersonalDetails: personalDetailsDocument{
			FullName:            pd.FullName,
			ContactNo:           pd.ContactNo,
			AlternateContactNo:  pd.AlternateContactNo,
			Email:               pd.Email,
			CurrentAddressLine1: pd.CurrentAddressLine1,
			CurrentAddressLine2: pd.CurrentAddressLine2,
			CurrentCity:         pd.CurrentCity,
			CurrentState:        pd.CurrentState,
			CurrentPincode:      pd.CurrentPincode,
			CommunicationMode:   orEmpty(pd.CommunicationMode),
		},
		PropertyDetails: propertyDetailsDocument{
			PropertyAddressLine1: dd.PropertyAddressLine1,
			PropertyAddressLine2: dd.PropertyAddressLine2,
			PropertyCity:         dd.PropertyCity,
			PropertyState:        dd.PropertyState,
			PropertyPincode:      dd.PropertyPincode,
			PropertyName:         dd.PropertyName,
			PropertyType:         dd.PropertyType,
			BHKType:              dd.BHKType,
			FurnishingStatus:     dd.FurnishingStatus,
			PropertyPrice:        dd.PropertyPrice,
			SecurityDeposit:      dd.SecurityDeposit,
			Amenities:            orEmpty(dd.Amenities),
		},
		Documents: documentsDocument{
			IdentityProof:  orEmpty(docs.IdentityProof),
			OwnershipProof: orEmpty(docs.OwnershipProof),
			PropertyPhotos: orEmpty(docs.PropertyPhotos),
			FloorPlan:      orEmpty(docs.FloorPlan),
		},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (d *propertyDocument) toDomain() *propdomain.Property {
	pd, dd, docs := d.PersonalDetails, d.PropertyDetails, d.Documents
	return &propdomain.Property{
		ID:     d.ID.Hex(),
		UserID: d.UserID.Hex(),
		PersonalDetails: propdomain.PersonalDetails{
			FullName:            pd.FullName,
			ContactNo:           pd.ContactNo,
			AlternateContactNo:  pd.AlternateContactNo,
			Email:               pd.Email,
			CurrentAddressLine1: pd.CurrentAddressLine1,
			CurrentAddressLine2: pd.CurrentAddressLine2,
			CurrentCity:         pd.CurrentCity,
			CurrentState:        pd.CurrentState,
			CurrentPincode:      pd.CurrentPincode,
			CommunicationMode:   orEmpty(pd.CommunicationMode),
		},
		PropertyDetails: propdomain.PropertyDetails{
			PropertyAddressLine1: dd.PropertyAddressLine1,
			PropertyAddressLine2: dd.PropertyAddressLine2,
			PropertyCity:         dd.PropertyCity,
			PropertyState:        dd.PropertyState,
			PropertyPincode:      dd.PropertyPincode,
			PropertyName:         dd.PropertyName,
			PropertyType:         dd.PropertyType,
			BHKType:              dd.BHKType,
			FurnishingStatus:     dd.FurnishingStatus,
			PropertyPrice:        dd.PropertyPrice,
			SecurityDeposit:      dd.SecurityDeposit,
			Amenities:            orEmpty(dd.Amenities),
		},
		Documents: propdomain.Documents{
			IdentityProof:  orEmpty(docs.IdentityProof),
			OwnershipProof: orEmpty(docs.OwnershipProof),
			PropertyPhotos: orEmpty(docs.PropertyPhotos),
			FloorPlan:      orEmpty(docs.FloorPlan),
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// orEmpty keeps arrays from being written or returned as null.
func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
