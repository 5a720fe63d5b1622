package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kendall-kelly/sari-inventory-api/models"
	"github.com/kendall-kelly/sari-inventory-api/utils"
	"github.com/sirupsen/logrus"
	"github.com/ttacon/libphonenumber"
	"gorm.io/gorm"
)

const defaultSupplierCategory = "general"

// ContactInput is the create/update payload shared by customers and suppliers
type ContactInput struct {
	Name       string
	Email      *string
	Phone      *string
	Address    string
	City       string
	State      string
	PostalCode string
	Status     string
	Category   string // suppliers only
}

// ContactFilter holds the query-string filters of the contact lists
type ContactFilter struct {
	Search   string
	Status   string
	Category string // suppliers only
	Page     int
	Limit    int
}

// NamedCount is a count grouped by an arbitrary label
type NamedCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// ContactStats summarizes a contact table
type ContactStats struct {
	Total        int64        `json:"total"`
	Active       int64        `json:"active"`
	Inactive     int64        `json:"inactive"`
	ByCategory   []NamedCount `json:"byCategory,omitempty"`
	ByCity       []NamedCount `json:"byCity"`
	ByState      []NamedCount `json:"byState"`
	NewThisMonth int64        `json:"newThisMonth"`
}

// ContactService manages customers and suppliers
type ContactService struct {
	db          *gorm.DB
	phoneRegion string
	validate    *validator.Validate
	logger      logrus.FieldLogger
	now         func() time.Time
}

// NewContactService creates a new ContactService. Phone numbers without a
// country prefix are parsed as numbers of phoneRegion.
func NewContactService(db *gorm.DB, phoneRegion string, logger logrus.FieldLogger) *ContactService {
	return &ContactService{
		db:          db,
		phoneRegion: phoneRegion,
		validate:    validator.New(),
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// normalize trims input, blanks empty optionals and canonicalizes the phone number to E.164
func (s *ContactService) normalize(in ContactInput) (ContactInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, ValidationError("VALIDATION_ERROR", "Name is required")
	}

	in.Email = trimOptional(in.Email)
	if in.Email != nil {
		lowered := strings.ToLower(*in.Email)
		in.Email = &lowered
		if err := s.validate.Var(lowered, "email"); err != nil {
			return in, ValidationError("INVALID_EMAIL", "Invalid email format")
		}
	}

	in.Phone = trimOptional(in.Phone)
	if in.Phone != nil {
		formatted, err := NormalizePhone(*in.Phone, s.phoneRegion)
		if err != nil {
			return in, ValidationError("INVALID_PHONE", "Invalid phone number format")
		}
		in.Phone = &formatted
	}

	switch in.Status {
	case "":
		in.Status = models.ContactStatusActive
	case models.ContactStatusActive, models.ContactStatusInactive:
	default:
		return in, ValidationError("INVALID_STATUS", "status must be active or inactive")
	}

	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		in.Category = defaultSupplierCategory
	}
	return in, nil
}

// NormalizePhone parses phone as a number of region and formats it as E.164
func NormalizePhone(phone, region string) (string, error) {
	p, err := libphonenumber.Parse(phone, region)
	if err != nil {
		return "", err
	}
	if !libphonenumber.IsValidNumber(p) {
		return "", errors.New("phone number is not valid")
	}
	return libphonenumber.Format(p, libphonenumber.E164), nil
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

// ensureUnique rejects an email or phone already used by another row of model
func ensureUnique(tx *gorm.DB, model interface{}, in ContactInput, excludeID uint) error {
	check := func(column string, value *string, code, message string) error {
		if value == nil {
			return nil
		}
		var count int64
		q := tx.Model(model).Where(column+" = ?", *value)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ConflictError(code, message)
		}
		return nil
	}
	if err := check("email", in.Email, "EMAIL_EXISTS", "Email already exists"); err != nil {
		return err
	}
	return check("phone", in.Phone, "PHONE_EXISTS", "Phone number already exists")
}

func contactQuery(db *gorm.DB, model interface{}, filter ContactFilter) *gorm.DB {
	q := db.Model(model)
	if filter.Search != "" {
		pattern := utils.LikePattern(filter.Search)
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?)", pattern, pattern, pattern)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return q
}

// ListCustomers returns one page of customers ordered by name
func (s *ContactService) ListCustomers(ctx context.Context, filter ContactFilter) ([]models.Customer, utils.Pagination, error) {
	page, limit := utils.NormalizePage(filter.Page, filter.Limit, 20)
	q := contactQuery(s.db.WithContext(ctx), &models.Customer{}, filter)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, FromDB(err, "Failed to fetch customers")
	}
	var customers []models.Customer
	if err := q.Order("name ASC").Limit(limit).Offset(utils.Offset(page, limit)).Find(&customers).Error; err != nil {
		return nil, utils.Pagination{}, FromDB(err, "Failed to fetch customers")
	}
	return customers, utils.NewPagination(page, limit, total), nil
}

// GetCustomer returns a customer by id
func (s *ContactService) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("CUSTOMER_NOT_FOUND", "Customer not found")
		}
		return nil, FromDB(err, "Failed to fetch customer")
	}
	return &customer, nil
}

// CreateCustomer adds a customer after checking email and phone are unused
func (s *ContactService) CreateCustomer(ctx context.Context, in ContactInput) (*models.Customer, error) {
	in, err := s.normalize(in)
	if err != nil {
		return nil, err
	}

	customer := models.Customer{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Address:    in.Address,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Status:     in.Status,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, &models.Customer{}, in, 0); err != nil {
			return err
		}
		return tx.Create(&customer).Error
	})
	if err != nil {
		return nil, FromDB(err, "Failed to create customer")
	}

	s.logger.WithField("customer_id", customer.ID).Info("customer created")
	return &customer, nil
}

// UpdateCustomer replaces a customer's fields
func (s *ContactService) UpdateCustomer(ctx context.Context, id uint, in ContactInput) (*models.Customer, error) {
	in, err := s.normalize(in)
	if err != nil {
		return nil, err
	}

	var customer models.Customer
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&customer, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("CUSTOMER_NOT_FOUND", "Customer not found")
			}
			return err
		}
		if err := ensureUnique(tx, &models.Customer{}, in, id); err != nil {
			return err
		}
		customer.Name = in.Name
		customer.Email = in.Email
		customer.Phone = in.Phone
		customer.Address = in.Address
		customer.City = in.City
		customer.State = in.State
		customer.PostalCode = in.PostalCode
		customer.Status = in.Status
		return tx.Save(&customer).Error
	})
	if err != nil {
		return nil, FromDB(err, "Failed to update customer")
	}
	return &customer, nil
}

// DeleteCustomer marks a customer inactive
func (s *ContactService) DeleteCustomer(ctx context.Context, id uint) error {
	return s.deactivate(ctx, &models.Customer{}, id, "CUSTOMER_NOT_FOUND", "Customer not found")
}

// CustomerStats summarizes the customer table
func (s *ContactService) CustomerStats(ctx context.Context) (*ContactStats, error) {
	return s.stats(ctx, &models.Customer{}, false)
}

// ListSuppliers returns one page of suppliers ordered by name
func (s *ContactService) ListSuppliers(ctx context.Context, filter ContactFilter) ([]models.Supplier, utils.Pagination, error) {
	page, limit := utils.NormalizePage(filter.Page, filter.Limit, 20)
	q := contactQuery(s.db.WithContext(ctx), &models.Supplier{}, filter)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, utils.Pagination{}, FromDB(err, "Failed to fetch suppliers")
	}
	var suppliers []models.Supplier
	if err := q.Order("name ASC").Limit(limit).Offset(utils.Offset(page, limit)).Find(&suppliers).Error; err != nil {
		return nil, utils.Pagination{}, FromDB(err, "Failed to fetch suppliers")
	}
	return suppliers, utils.NewPagination(page, limit, total), nil
}

// GetSupplier returns a supplier by id
func (s *ContactService) GetSupplier(ctx context.Context, id uint) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := s.db.WithContext(ctx).First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("SUPPLIER_NOT_FOUND", "Supplier not found")
		}
		return nil, FromDB(err, "Failed to fetch supplier")
	}
	return &supplier, nil
}

// CreateSupplier adds a supplier after checking email and phone are unused
func (s *ContactService) CreateSupplier(ctx context.Context, in ContactInput) (*models.Supplier, error) {
	in, err := s.normalize(in)
	if err != nil {
		return nil, err
	}

	supplier := models.Supplier{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Address:    in.Address,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Category:   in.Category,
		Status:     in.Status,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUnique(tx, &models.Supplier{}, in, 0); err != nil {
			return err
		}
		return tx.Create(&supplier).Error
	})
	if err != nil {
		return nil, FromDB(err, "Failed to create supplier")
	}

	s.logger.WithField("supplier_id", supplier.ID).Info("supplier created")
	return &supplier, nil
}

// UpdateSupplier replaces a supplier's fields
func (s *ContactService) UpdateSupplier(ctx context.Context, id uint, in ContactInput) (*models.Supplier, error) {
	in, err := s.normalize(in)
	if err != nil {
		return nil, err
	}

	var supplier models.Supplier
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&supplier, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError("SUPPLIER_NOT_FOUND", "Supplier not found")
			}
			return err
		}
		if err := ensureUnique(tx, &models.Supplier{}, in, id); err != nil {
			return err
		}
		supplier.Name = in.Name
		supplier.Email = in.Email
		supplier.Phone = in.Phone
		supplier.Address = in.Address
		supplier.City = in.City
		supplier.State = in.State
		supplier.PostalCode = in.PostalCode
		supplier.Category = in.Category
		supplier.Status = in.Status
		return tx.Save(&supplier).Error
	})
	if err != nil {
		return nil, FromDB(err, "Failed to update supplier")
	}
	return &supplier, nil
}

// DeleteSupplier marks a supplier inactive
func (s *ContactService) DeleteSupplier(ctx context.Context, id uint) error {
	return s.deactivate(ctx, &models.Supplier{}, id, "SUPPLIER_NOT_FOUND", "Supplier not found")
}

// SupplierStats summarizes the supplier table
func (s *ContactService) SupplierStats(ctx context.Context) (*ContactStats, error) {
	return s.stats(ctx, &models.Supplier{}, true)
}

// SupplierCategories lists the distinct supplier categories
func (s *ContactService) SupplierCategories(ctx context.Context) ([]string, error) {
	categories := []string{}
	err := s.db.WithContext(ctx).Model(&models.Supplier{}).
		Distinct("category").
		Where("category <> ''").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, FromDB(err, "Failed to fetch supplier categories")
	}
	return categories, nil
}

func (s *ContactService) deactivate(ctx context.Context, model interface{}, id uint, code, message string) error {
	res := s.db.WithContext(ctx).Model(model).
		Where("id = ?", id).
		Update("status", models.ContactStatusInactive)
	if res.Error != nil {
		return FromDB(res.Error, "Failed to delete contact")
	}
	if res.RowsAffected == 0 {
		return NotFoundError(code, message)
	}
	return nil
}

func (s *ContactService) stats(ctx context.Context, model interface{}, withCategory bool) (*ContactStats, error) {
	db := s.db.WithContext(ctx)
	stats := ContactStats{ByCity: []NamedCount{}, ByState: []NamedCount{}}
	fail := func(err error) (*ContactStats, error) {
		return nil, FromDB(err, "Failed to fetch contact statistics")
	}

	if err := db.Model(model).Count(&stats.Total).Error; err != nil {
		return fail(err)
	}
	if err := db.Model(model).Where("status = ?", models.ContactStatusActive).Count(&stats.Active).Error; err != nil {
		return fail(err)
	}
	if err := db.Model(model).Where("status = ?", models.ContactStatusInactive).Count(&stats.Inactive).Error; err != nil {
		return fail(err)
	}

	groupBy := func(column string, limit int, dest *[]NamedCount) error {
		q := db.Model(model).
			Select(column + " AS name, COUNT(*) AS count").
			Where(column + " <> ''").
			Group(column).
			Order("count DESC").Order(column + " ASC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q.Scan(dest).Error
	}
	if withCategory {
		stats.ByCategory = []NamedCount{}
		if err := groupBy("category", 0, &stats.ByCategory); err != nil {
			return fail(err)
		}
	}
	if err := groupBy("city", 10, &stats.ByCity); err != nil {
		return fail(err)
	}
	if err := groupBy("state", 10, &stats.ByState); err != nil {
		return fail(err)
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if err := db.Model(model).Where("created_at >= ?", monthStart).Count(&stats.NewThisMonth).Error; err != nil {
		return fail(err)
	}
	return &stats, nil
}
