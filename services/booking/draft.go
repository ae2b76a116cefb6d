package booking

import (
	"reflect"
	"strings"

	"campstay/models"

	"github.com/go-playground/validator/v10"
)

var draftValidator = newDraftValidator()

func newDraftValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DraftBuilder collects booking fields as the user enters them. It holds raw
// input and only interprets it in Validate, so setters never fail.
type DraftBuilder struct {
	draft       models.BookingDraft
	checkInRaw  string
	checkOutRaw string
	methodRaw   string
}

// NewDraftBuilder starts an empty draft, prefilled from profile when given.
func NewDraftBuilder(profile *models.UserProfile) *DraftBuilder {
	b := &DraftBuilder{methodRaw: string(models.PayAtProperty)}
	b.draft.Guests = 1
	if profile != nil {
		b.draft.Name = profile.Name
		b.draft.Email = profile.Email
		b.draft.Phone = profile.PhoneNumber
	}
	return b
}

func (b *DraftBuilder) SetName(v string) *DraftBuilder  { b.draft.Name = v; return b }
func (b *DraftBuilder) SetEmail(v string) *DraftBuilder { b.draft.Email = v; return b }
func (b *DraftBuilder) SetPhone(v string) *DraftBuilder { b.draft.Phone = v; return b }

// SetDates takes check-in and check-out as YYYY-MM-DD.
func (b *DraftBuilder) SetDates(checkIn, checkOut string) *DraftBuilder {
	b.checkInRaw, b.checkOutRaw = checkIn, checkOut
	return b
}

func (b *DraftBuilder) SetGuests(n int) *DraftBuilder { b.draft.Guests = n; return b }

func (b *DraftBuilder) SetPaymentMethod(method string) *DraftBuilder {
	b.methodRaw = method
	return b
}

func (b *DraftBuilder) SetIdentityDocument(doc *models.Document) *DraftBuilder {
	b.draft.IdentityDocument = doc
	return b
}

func (b *DraftBuilder) SetUnitPrice(price float64) *DraftBuilder {
	b.draft.UnitPrice = price
	return b
}

// ForPackage books a catalog package.
func (b *DraftBuilder) ForPackage(packageID string) *DraftBuilder {
	b.draft.PackageID, b.draft.ListingID, b.draft.HostID = packageID, "", ""
	return b
}

// ForHostListing books an independently hosted listing.
func (b *DraftBuilder) ForHostListing(listingID, hostID string) *DraftBuilder {
	b.draft.PackageID, b.draft.ListingID, b.draft.HostID = "", listingID, hostID
	return b
}

// SetListingRefs copies listing references verbatim from a form; Validate
// rejects anything but exactly one reference.
func (b *DraftBuilder) SetListingRefs(packageID, listingID, hostID string) *DraftBuilder {
	b.draft.PackageID, b.draft.ListingID, b.draft.HostID = packageID, listingID, hostID
	return b
}

// Draft returns the current, unvalidated field values.
func (b *DraftBuilder) Draft() models.BookingDraft {
	d := b.draft
	d.CheckIn, _ = models.ParseDate(b.checkInRaw)
	d.CheckOut, _ = models.ParseDate(b.checkOutRaw)
	if m, err := models.ParsePaymentMethod(b.methodRaw); err == nil {
		d.PaymentMethod = m
	}
	return d
}

// Validate returns a copy of the draft ready for submission, or a
// *ValidationError listing every field-level problem.
func (b *DraftBuilder) Validate() (models.BookingDraft, error) {
	d := b.draft
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	d.PackageID = strings.TrimSpace(d.PackageID)
	d.ListingID = strings.TrimSpace(d.ListingID)
	d.HostID = strings.TrimSpace(d.HostID)

	if m, err := models.ParsePaymentMethod(b.methodRaw); err == nil {
		d.PaymentMethod = m
	} else {
		d.PaymentMethod = models.PaymentMethod(b.methodRaw)
	}

	var fields []FieldError
	if err := draftValidator.Struct(d); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, FieldError{Field: fe.Field(), Message: tagMessage(fe)})
			}
		} else {
			fields = append(fields, FieldError{Field: "draft", Message: err.Error()})
		}
	}

	fields = append(fields, b.validateDates(&d)...)

	switch {
	case d.PackageID != "" && d.ListingID != "":
		fields = append(fields, FieldError{Field: "listing", Message: "choose either a package or a listing, not both"})
	case d.PackageID == "" && d.ListingID == "":
		fields = append(fields, FieldError{Field: "listing", Message: "a package or listing is required"})
	case d.ListingID != "" && d.HostID == "":
		fields = append(fields, FieldError{Field: "hostId", Message: "hostId is required for hosted listings"})
	}

	if err := newValidationError(fields); err != nil {
		return models.BookingDraft{}, err
	}
	return d, nil
}

func (b *DraftBuilder) validateDates(d *models.BookingDraft) []FieldError {
	var fields []FieldError
	checkIn, errIn := models.ParseDate(b.checkInRaw)
	checkOut, errOut := models.ParseDate(b.checkOutRaw)

	switch {
	case errIn != nil:
		fields = append(fields, FieldError{Field: "checkIn", Message: errIn.Error()})
	case checkIn.IsZero():
		fields = append(fields, FieldError{Field: "checkIn", Message: "check-in date is required"})
	}
	switch {
	case errOut != nil:
		fields = append(fields, FieldError{Field: "checkOut", Message: errOut.Error()})
	case checkOut.IsZero():
		fields = append(fields, FieldError{Field: "checkOut", Message: "check-out date is required"})
	}
	if len(fields) == 0 && !checkOut.After(checkIn.Time) {
		fields = append(fields, FieldError{Field: "checkOut", Message: "check-out date must be after check-in date"})
	}

	d.CheckIn, d.CheckOut = checkIn, checkOut
	return fields
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return fe.Field() + " is invalid"
}
