package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/theplant/luhn"
	"go.uber.org/zap"

	"github.com/iurnickita/shopledger/internal/cashbook"
	"github.com/iurnickita/shopledger/internal/debtor"
	"github.com/iurnickita/shopledger/internal/ledger"
	"github.com/iurnickita/shopledger/internal/metrics"
	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/money"
	"github.com/iurnickita/shopledger/internal/order"
	"github.com/iurnickita/shopledger/internal/service/config"
	"github.com/iurnickita/shopledger/internal/service/smsclient"
	"github.com/iurnickita/shopledger/internal/store"
	"github.com/iurnickita/shopledger/internal/validation"
)

type Service interface {
	PutProduct(ctx context.Context, product model.Product) error
	GetProduct(ctx context.Context, id string) (model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id string, patch ProductPatch) (model.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	QuoteOrder(ctx context.Context, req OrderRequest) (order.Quote, error)
	PostOrder(ctx context.Context, req OrderRequest) (model.Order, error)
	PatchOrder(ctx context.Context, number string, req OrderRequest) (model.Order, error)
	GetOrder(ctx context.Context, number string) (model.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	PutOrderStatus(ctx context.Context, number string, status string) error
	GetOrderStats(ctx context.Context, filter OrderFilter) (order.Stats, error)

	PostDebtor(ctx context.Context, data model.DebtorData) (model.Debtor, error)
	GetDebtor(ctx context.Context, id string) (model.Debtor, error)
	ListDebtors(ctx context.Context, filter debtor.Filter) ([]model.Debtor, error)
	DeleteDebtor(ctx context.Context, id string) error
	PatchDebtor(ctx context.Context, id string, patch debtor.Patch) (model.Debtor, error)
	PostDebtorPayment(ctx context.Context, id string, amount decimal.Decimal, next *model.NextPayment) (model.Debtor, error)
	GetDebtorPayments(ctx context.Context, id string) ([]model.PaymentRecord, error)

	PostCashTransaction(ctx context.Context, data model.CashTransactionData) (model.CashTransaction, error)
	ListCashTransactions(ctx context.Context, filter CashFilter) (CashBook, error)
	DeleteCashTransaction(ctx context.Context, id string) error

	RemindOverdue(ctx context.Context) (RemindReport, error)
	Run(ctx context.Context)
}

var (
	ErrInsufficientData    = errors.New("insufficient data")
	ErrUnprocessableEntity = errors.New("unprocessable entity")
	ErrAlreadyExists       = errors.New("already exists")
	ErrNotFound            = errors.New("not found")
)

type (
	OrderFilter = store.OrderFilter
	CashFilter  = store.CashFilter
)

// ProductPatch is a partial product edit. Nil fields are kept.
type ProductPatch struct {
	Name      *string
	UnitPrice *model.UnitPrice
	Currency  *string
	Quantity  *decimal.Decimal
}

// LineRequest is an order line as entered. Price is set only when the
// cashier typed a price over the catalog one.
type LineRequest struct {
	ProductID string
	Quantity  decimal.Decimal
	Price     *decimal.Decimal
}

type OrderRequest struct {
	CreatedBy   string
	Client      string
	ClientPhone string
	Branch      string
	Notes       string
	Lines       []LineRequest
	PaymentType string
	// Paid is nil when the cashier did not touch the paid amount
	Paid    *money.Money
	DueDate *time.Time
}

// RemindReport counts one reminder run. Skipped debtors have no phone,
// Reminded ones already got an SMS today.
type RemindReport struct {
	Overdue  int
	Sent     int
	Failed   int
	Skipped  int
	Reminded int
}

// CashBook is a cash book page with the balance of the listed entries.
type CashBook struct {
	Entries []model.CashTransaction
	Balance cashbook.Balance
}

type service struct {
	cfg      config.Config
	store    store.Store
	ledger   ledger.Ledger
	notifier smsclient.Notifier
	metrics  *metrics.Metrics
	zaplog   *zap.Logger
	location *time.Location
	clock    func() time.Time
}

func NewService(cfg config.Config, store store.Store, notifier smsclient.Notifier, metrics *metrics.Metrics, zaplog *zap.Logger) (Service, error) {
	location := time.UTC
	if cfg.TimeZone != "" {
		loc, err := time.LoadLocation(cfg.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("time zone %q: %w", cfg.TimeZone, err)
		}
		location = loc
	}
	if cfg.MinLeadDays < 0 {
		cfg.MinLeadDays = order.DefaultMinLeadDays
	}

	service := &service{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		zaplog:   zaplog,
		location: location,
		clock:    time.Now,
	}
	service.ledger = ledger.NewLedger(store, service.now)

	return service, nil
}

// now is the wall clock in the shop time zone; calendar day rules use it.
func (service *service) now() time.Time {
	return service.clock().In(service.location)
}

// calendarDay keeps the date of t as written by the client and places it at
// midnight in the shop time zone.
func (service *service) calendarDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, service.location)
	return &day
}

func (service *service) nextPayment(next *model.NextPayment) *model.NextPayment {
	if next == nil {
		return nil
	}
	return &model.NextPayment{Amount: next.Amount, DueDate: service.calendarDay(next.DueDate)}
}

func (service *service) diagnostic(d order.Diagnostic) {
	service.zaplog.Warn("order input corrected",
		zap.String("product", d.ProductID),
		zap.String("field", d.Field),
		zap.String("value", d.Value.String()),
		zap.String("message", d.Message),
	)
}

func (service *service) reject(err error) error {
	if code := validation.CodeOf(err); code != "" {
		service.metrics.ValidationRejections.WithLabelValues(string(code)).Inc()
	}
	return err
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrOutOfStock):
		return validation.New(validation.ErrInsufficientStock, "products", err.Error())
	case errors.Is(err, store.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrAlreadyExists
	default:
		return err
	}
}

// Товары

func (service *service) PutProduct(ctx context.Context, product model.Product) error {
	if product.ID == "" || product.Name == "" {
		return ErrInsufficientData
	}
	if product.Quantity.IsNegative() {
		return fmt.Errorf("quantity %s: %w", product.Quantity, ErrUnprocessableEntity)
	}
	if product.Currency == "" {
		product.Currency = model.CurrencyLocal
	}
	return service.store.ProductPut(ctx, product)
}

func (service *service) GetProduct(ctx context.Context, id string) (model.Product, error) {
	product, err := service.store.ProductGet(ctx, id)
	if err != nil {
		return model.Product{}, mapStoreErr(err)
	}
	return product, nil
}

func (service *service) ListProducts(ctx context.Context) ([]model.Product, error) {
	return service.store.ProductList(ctx, nil)
}

func (service *service) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (model.Product, error) {
	product, err := service.store.ProductGet(ctx, id)
	if err != nil {
		return model.Product{}, mapStoreErr(err)
	}
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.UnitPrice != nil {
		product.UnitPrice = *patch.UnitPrice
	}
	if patch.Currency != nil {
		product.Currency = *patch.Currency
	}
	if patch.Quantity != nil {
		product.Quantity = *patch.Quantity
	}
	if err := service.PutProduct(ctx, product); err != nil {
		return model.Product{}, err
	}
	return service.GetProduct(ctx, id)
}

// DeleteProduct removes a product from the catalog. Stored orders keep their
// own copy of the line prices.
func (service *service) DeleteProduct(ctx context.Context, id string) error {
	return mapStoreErr(service.store.ProductDelete(ctx, id))
}

// Заказы

// draft resolves line prices against the catalog and builds the draft.
func (service *service) draft(ctx context.Context, req OrderRequest) (order.Draft, order.Catalog, error) {
	method, err := order.ParsePaymentMethod(req.PaymentType)
	if err != nil {
		return order.Draft{}, nil, err
	}

	var ids []string
	for _, l := range req.Lines {
		if l.ProductID != "" {
			ids = append(ids, l.ProductID)
		}
	}
	catalog := order.CatalogMap{}
	if len(ids) > 0 {
		products, err := service.store.ProductList(ctx, ids)
		if err != nil {
			return order.Draft{}, nil, err
		}
		catalog = order.NewCatalog(products)
	}

	lines := make([]model.OrderLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		if l.ProductID == "" {
			continue
		}
		product, ok := catalog.Product(l.ProductID)
		if !ok {
			return order.Draft{}, nil, fmt.Errorf("product %s: %w", l.ProductID, ErrUnprocessableEntity)
		}
		line := order.ApplyProductPrice(model.OrderLine{Quantity: l.Quantity}, product)
		if l.Price != nil {
			line, err = order.EditUnitPrice(line, *l.Price)
			if err != nil {
				return order.Draft{}, nil, err
			}
		}
		lines = append(lines, line)
	}

	d := order.Draft{
		Lines:     lines,
		Method:    method,
		CreatedAt: service.now(),
		DueDate:   service.calendarDay(req.DueDate),
	}
	if req.Paid != nil {
		d.Paid = *req.Paid
		d.PaidEdited = true
	}
	return d, catalog, nil
}

func (service *service) QuoteOrder(ctx context.Context, req OrderRequest) (order.Quote, error) {
	d, catalog, err := service.draft(ctx, req)
	if err != nil {
		return order.Quote{}, service.reject(err)
	}
	return order.Evaluate(d, catalog, service.cfg.MinLeadDays, service.diagnostic), nil
}

func (service *service) PostOrder(ctx context.Context, req OrderRequest) (model.Order, error) {
	if req.CreatedBy == "" || req.Client == "" {
		return model.Order{}, ErrInsufficientData
	}

	d, catalog, err := service.draft(ctx, req)
	if err != nil {
		return model.Order{}, service.reject(err)
	}
	quote := order.Evaluate(d, catalog, service.cfg.MinLeadDays, service.diagnostic)
	if err := order.ValidateDraft(d, quote); err != nil {
		return model.Order{}, service.reject(err)
	}
	take := order.StockDelta(nil, d.Lines)
	if err := order.CheckStock(take, catalog); err != nil {
		return model.Order{}, service.reject(err)
	}

	// Номер чека с контрольной цифрой по алгоритму Луна
	seq, err := service.store.PurchaseOrderNextSeq(ctx)
	if err != nil {
		return model.Order{}, err
	}
	number := strconv.Itoa(seq*10 + luhn.CalculateLuhn(seq))

	var newOrder model.Order
	newOrder.Number = number
	newOrder.Data.CreatedBy = req.CreatedBy
	newOrder.Data.Client = req.Client
	newOrder.Data.ClientPhone = req.ClientPhone
	newOrder.Data.Branch = req.Branch
	newOrder.Data.Notes = req.Notes
	newOrder.Data.Lines = d.Lines
	newOrder.Data.PaymentType = d.Method
	newOrder.Data.Status = model.OrderStatusPending
	newOrder.Data.TotalAmount = quote.Totals.Total
	newOrder.Data.PaidAmount = quote.Totals.Paid
	newOrder.Data.DebtAmount = quote.Totals.Debt
	newOrder.Data.DateReturned = quote.Verdict.DueDate
	newOrder.Data.CreatedAt = d.CreatedAt

	// Долг в сумах по кредитному заказу открывает запись должника
	var newDebtor *model.Debtor
	if d.Method == model.PaymentCredit && quote.Totals.Debt.Local.IsPositive() {
		opened := ledger.Prepare(model.DebtorData{
			ClientName:  req.Client,
			ClientPhone: req.ClientPhone,
			Description: "order " + number,
			Order:       number,
			InitialDebt: quote.Totals.Debt.Local,
			NextPayment: &model.NextPayment{Amount: quote.Totals.Debt.Local, DueDate: quote.Verdict.DueDate},
		}, d.CreatedAt)
		newDebtor = &opened
	}

	err = service.store.PurchaseOrderPost(ctx, newOrder, take, newDebtor)
	if err != nil {
		return model.Order{}, service.reject(mapStoreErr(err))
	}

	service.metrics.OrdersCreated.WithLabelValues(string(d.Method)).Inc()
	if newDebtor != nil {
		service.zaplog.Info("debtor opened",
			zap.String("order", number),
			zap.String("debtor", newDebtor.ID),
			zap.String("debt", newDebtor.Data.InitialDebt.String()),
		)
	}
	return newOrder, nil
}

// mergeOrder fills what an edit request left out from the stored order.
func (service *service) mergeOrder(stored model.Order, req OrderRequest) OrderRequest {
	keep := func(v *string, old string) {
		if *v == "" {
			*v = old
		}
	}
	keep(&req.Client, stored.Data.Client)
	keep(&req.ClientPhone, stored.Data.ClientPhone)
	keep(&req.Branch, stored.Data.Branch)
	keep(&req.Notes, stored.Data.Notes)
	keep(&req.PaymentType, string(stored.Data.PaymentType))

	if len(req.Lines) == 0 {
		for _, l := range stored.Data.Lines {
			line := LineRequest{ProductID: l.ProductID, Quantity: l.Quantity}
			if l.UnitPrice.Editable() {
				price := l.UnitPrice.Scalar
				line.Price = &price
			}
			req.Lines = append(req.Lines, line)
		}
	}
	// оплату, отличную от итога, вводили руками
	if req.Paid == nil && !stored.Data.DebtAmount.IsZero() {
		paid := stored.Data.PaidAmount
		req.Paid = &paid
	}
	if req.DueDate == nil && stored.Data.DateReturned != nil {
		due := stored.Data.DateReturned.In(service.location)
		req.DueDate = &due
	}
	return req
}

// PatchOrder re-prices and re-checks a stored order with the edited fields.
// The lead time is counted from the original creation day. The stock
// difference is moved and the linked debtor follows the new debt.
func (service *service) PatchOrder(ctx context.Context, number string, req OrderRequest) (model.Order, error) {
	stored, err := service.store.PurchaseOrderGet(ctx, number)
	if err != nil {
		return model.Order{}, mapStoreErr(err)
	}

	merged := service.mergeOrder(stored, req)
	d, catalog, err := service.draft(ctx, merged)
	if err != nil {
		return model.Order{}, service.reject(err)
	}
	d.CreatedAt = stored.Data.CreatedAt.In(service.location)
	quote := order.Evaluate(d, catalog, service.cfg.MinLeadDays, service.diagnostic)
	if err := order.ValidateDraft(d, quote); err != nil {
		return model.Order{}, service.reject(err)
	}
	take := order.StockDelta(stored.Data.Lines, d.Lines)
	if err := order.CheckStock(take, catalog); err != nil {
		return model.Order{}, service.reject(err)
	}

	updated := stored
	updated.Data.Client = merged.Client
	updated.Data.ClientPhone = merged.ClientPhone
	updated.Data.Branch = merged.Branch
	updated.Data.Notes = merged.Notes
	updated.Data.Lines = d.Lines
	updated.Data.PaymentType = d.Method
	updated.Data.TotalAmount = quote.Totals.Total
	updated.Data.PaidAmount = quote.Totals.Paid
	updated.Data.DebtAmount = quote.Totals.Debt
	// без долга срок возврата сбрасывается
	updated.Data.DateReturned = quote.Verdict.DueDate

	now := service.now()
	before := stored.Data.DebtAmount.Local
	after := decimal.Zero
	if d.Method == model.PaymentCredit {
		after = quote.Totals.Debt.Local
	}
	// график должника трогаем, только если изменился долг или срок
	var reprice store.DebtorFunc
	if !before.Equal(after) || !sameTime(stored.Data.DateReturned, quote.Verdict.DueDate) {
		reprice = func(current model.DebtorData) (model.DebtorData, error) {
			return debtor.Reprice(current, before, after, quote.Verdict.DueDate, now), nil
		}
	}
	var opened *model.Debtor
	if after.IsPositive() {
		o := ledger.Prepare(model.DebtorData{
			ClientName:  updated.Data.Client,
			ClientPhone: updated.Data.ClientPhone,
			Description: "order " + number,
			Order:       number,
			InitialDebt: after,
			NextPayment: &model.NextPayment{Amount: after, DueDate: quote.Verdict.DueDate},
		}, now)
		opened = &o
	}

	err = service.store.PurchaseOrderPut(ctx, updated, take, opened, reprice)
	if err != nil {
		return model.Order{}, service.reject(mapStoreErr(err))
	}

	service.zaplog.Info("order edited",
		zap.String("order", number),
		zap.String("debt_before", before.String()),
		zap.String("debt_after", after.String()),
	)
	return updated, nil
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (service *service) GetOrder(ctx context.Context, number string) (model.Order, error) {
	if number == "" {
		return model.Order{}, ErrInsufficientData
	}
	o, err := service.store.PurchaseOrderGet(ctx, number)
	if err != nil {
		return model.Order{}, mapStoreErr(err)
	}
	return o, nil
}

// orderFilter moves the date bounds to shop midnight.
func (service *service) orderFilter(filter OrderFilter) OrderFilter {
	filter.From = service.calendarDay(filter.From)
	filter.To = service.calendarDay(filter.To)
	return filter
}

func (service *service) ListOrders(ctx context.Context, filter OrderFilter) ([]model.Order, error) {
	return service.store.PurchaseOrderList(ctx, service.orderFilter(filter))
}

func (service *service) PutOrderStatus(ctx context.Context, number string, status string) error {
	switch status {
	case model.OrderStatusPending, model.OrderStatusCompleted, model.OrderStatusCancelled:
	default:
		return ErrUnprocessableEntity
	}
	return mapStoreErr(service.store.PurchaseOrderPutStatus(ctx, number, status))
}

func (service *service) GetOrderStats(ctx context.Context, filter OrderFilter) (order.Stats, error) {
	orders, err := service.store.PurchaseOrderList(ctx, service.orderFilter(filter))
	if err != nil {
		return order.Stats{}, err
	}
	return order.Summarize(orders, service.now()), nil
}

// Должники

func (service *service) PostDebtor(ctx context.Context, data model.DebtorData) (model.Debtor, error) {
	if data.ClientName == "" {
		return model.Debtor{}, ErrInsufficientData
	}
	if !data.InitialDebt.IsPositive() {
		return model.Debtor{}, service.reject(
			validation.New(validation.ErrInvalidPaymentAmount, "initialDebt", data.InitialDebt.String()))
	}
	data.NextPayment = service.nextPayment(data.NextPayment)
	d, err := service.ledger.Open(ctx, data)
	if err != nil {
		return model.Debtor{}, mapStoreErr(err)
	}
	return d, nil
}

func (service *service) GetDebtor(ctx context.Context, id string) (model.Debtor, error) {
	d, err := service.ledger.Get(ctx, id)
	if err != nil {
		return model.Debtor{}, mapStoreErr(err)
	}
	return d, nil
}

func (service *service) ListDebtors(ctx context.Context, filter debtor.Filter) ([]model.Debtor, error) {
	filter.CreatedFrom = service.calendarDay(filter.CreatedFrom)
	filter.CreatedTo = service.calendarDay(filter.CreatedTo)
	return service.ledger.List(ctx, filter)
}

func (service *service) DeleteDebtor(ctx context.Context, id string) error {
	return mapStoreErr(service.ledger.Delete(ctx, id))
}

// PatchDebtor edits the debtor card. The name cannot be blanked.
func (service *service) PatchDebtor(ctx context.Context, id string, patch debtor.Patch) (model.Debtor, error) {
	if patch.ClientName != nil && strings.TrimSpace(*patch.ClientName) == "" {
		return model.Debtor{}, ErrInsufficientData
	}
	patch.NextPayment = service.nextPayment(patch.NextPayment)
	d, err := service.ledger.Edit(ctx, id, patch)
	if err != nil {
		return model.Debtor{}, mapStoreErr(err)
	}
	return d, nil
}

func (service *service) PostDebtorPayment(ctx context.Context, id string, amount decimal.Decimal, next *model.NextPayment) (model.Debtor, error) {
	d, err := service.ledger.Pay(ctx, id, amount, service.nextPayment(next))
	if err != nil {
		return model.Debtor{}, service.reject(mapStoreErr(err))
	}
	service.metrics.DebtorPayments.Inc()
	return d, nil
}

func (service *service) GetDebtorPayments(ctx context.Context, id string) ([]model.PaymentRecord, error) {
	payments, err := service.ledger.History(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return payments, nil
}

// Касса

func (service *service) PostCashTransaction(ctx context.Context, data model.CashTransactionData) (model.CashTransaction, error) {
	if data.CreatedBy == "" {
		return model.CashTransaction{}, ErrInsufficientData
	}
	data, err := cashbook.Normalize(data)
	switch {
	case errors.Is(err, cashbook.ErrUnknownType), errors.Is(err, cashbook.ErrUnknownCurrency):
		return model.CashTransaction{}, fmt.Errorf("%w: %s", ErrUnprocessableEntity, err)
	case err != nil:
		return model.CashTransaction{}, service.reject(err)
	}
	data.CreatedAt = service.now()

	entry := model.CashTransaction{ID: uuid.NewString(), Data: data}
	if err := service.store.CashTransactionPost(ctx, entry); err != nil {
		return model.CashTransaction{}, mapStoreErr(err)
	}

	service.metrics.CashTransactions.WithLabelValues(data.Type).Inc()
	service.zaplog.Info("cash transaction",
		zap.String("id", entry.ID),
		zap.String("type", data.Type),
		zap.String("amount", data.Amount.String()),
		zap.String("currency", data.Currency),
	)
	return entry, nil
}

func (service *service) ListCashTransactions(ctx context.Context, filter CashFilter) (CashBook, error) {
	filter.From = service.calendarDay(filter.From)
	filter.To = service.calendarDay(filter.To)
	entries, err := service.store.CashTransactionList(ctx, filter)
	if err != nil {
		return CashBook{}, err
	}
	return CashBook{Entries: entries, Balance: cashbook.Summarize(entries)}, nil
}

func (service *service) DeleteCashTransaction(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return mapStoreErr(service.store.CashTransactionDelete(ctx, id))
}

// Напоминания

// RemindOverdue sends one SMS to every overdue debtor with a phone number,
// at most once per calendar day. Gateway failures are counted and logged,
// they do not stop the run.
func (service *service) RemindOverdue(ctx context.Context) (RemindReport, error) {
	overdue, err := service.ledger.Overdue(ctx)
	if err != nil {
		return RemindReport{}, err
	}

	now := service.now()
	report := RemindReport{Overdue: len(overdue)}
	for _, d := range overdue {
		if d.Data.ClientPhone == "" {
			report.Skipped++
			continue
		}
		if debtor.RemindedOn(d.Data, now) {
			report.Reminded++
			continue
		}
		_, err := service.notifier.Send(ctx, d.Data.ClientPhone, reminderText(d.Data))
		if err != nil {
			report.Failed++
			service.metrics.SMSFailed.Inc()
			service.zaplog.Warn("overdue reminder failed",
				zap.String("debtor", d.ID),
				zap.Error(err),
			)
			continue
		}
		report.Sent++
		service.metrics.SMSSent.Inc()
		if err := service.ledger.Reminded(ctx, d.ID, now); err != nil {
			service.zaplog.Warn("reminder not stamped",
				zap.String("debtor", d.ID),
				zap.Error(err),
			)
		}
	}
	return report, nil
}

func reminderText(d model.DebtorData) string {
	due := ""
	if d.NextPayment != nil && d.NextPayment.DueDate != nil {
		due = " since " + d.NextPayment.DueDate.Format(time.DateOnly)
	}
	return fmt.Sprintf("%s, your payment of %s UZS is overdue%s.", d.ClientName, d.CurrentDebt.StringFixed(0), due)
}

// Run sends overdue reminders every RemindInterval until ctx is done.
func (service *service) Run(ctx context.Context) {
	if service.cfg.RemindInterval <= 0 {
		return
	}

	ticker := time.NewTicker(service.cfg.RemindInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := service.RemindOverdue(ctx)
			if err != nil {
				service.zaplog.Error("overdue reminders", zap.Error(err))
				continue
			}
			service.zaplog.Info("overdue reminders",
				zap.Int("overdue", report.Overdue),
				zap.Int("sent", report.Sent),
				zap.Int("failed", report.Failed),
				zap.Int("reminded", report.Reminded),
			)
		}
	}
}
