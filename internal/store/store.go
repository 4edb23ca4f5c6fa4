package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/money"
	"github.com/iurnickita/shopledger/internal/store/config"
)

type Store interface {
	AuthRegister(ctx context.Context, login string, passwordHash string) (string, error)
	AuthLogin(ctx context.Context, login string) (string, string, error)
	ProductPut(ctx context.Context, product model.Product) error
	ProductGet(ctx context.Context, id string) (model.Product, error)
	ProductList(ctx context.Context, ids []string) ([]model.Product, error)
	ProductDelete(ctx context.Context, id string) error
	PurchaseOrderNextSeq(ctx context.Context) (int, error)
	PurchaseOrderPost(ctx context.Context, order model.Order, take StockMove, debtor *model.Debtor) error
	PurchaseOrderPut(ctx context.Context, order model.Order, take StockMove, open *model.Debtor, reprice DebtorFunc) error
	PurchaseOrderGet(ctx context.Context, number string) (model.Order, error)
	PurchaseOrderList(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	PurchaseOrderPutStatus(ctx context.Context, number string, status string) error
	DebtorPost(ctx context.Context, debtor model.Debtor) error
	DebtorGet(ctx context.Context, id string) (model.Debtor, error)
	DebtorList(ctx context.Context) ([]model.Debtor, error)
	DebtorDelete(ctx context.Context, id string) error
	DebtorUpdate(ctx context.Context, id string, update DebtorFunc) (model.Debtor, error)
	DebtorApplyPayment(ctx context.Context, id string, apply PaymentFunc) (model.Debtor, error)
	DebtorPayments(ctx context.Context, id string) ([]model.PaymentRecord, error)
	DebtorPutReminded(ctx context.Context, id string, at time.Time) error
	CashTransactionPost(ctx context.Context, entry model.CashTransaction) error
	CashTransactionList(ctx context.Context, filter CashFilter) ([]model.CashTransaction, error)
	CashTransactionDelete(ctx context.Context, id string) error
	Close() error
}

// PaymentFunc computes the debtor state after a payment. It runs inside the
// transaction holding the debtor row lock and sees the payment journal.
type PaymentFunc func(model.DebtorData) (model.DebtorData, model.PaymentRecord, error)

// DebtorFunc computes the edited debtor state under the row lock.
type DebtorFunc func(model.DebtorData) (model.DebtorData, error)

// StockMove is the quantity taken from stock per product id. Negative values
// return goods to stock.
type StockMove map[string]decimal.Decimal

// CashFilter narrows CashTransactionList. Zero fields do not filter; To is
// exclusive.
type CashFilter struct {
	Type        string
	PaymentType string
	From        *time.Time
	To          *time.Time
}

// OrderFilter narrows PurchaseOrderList. Zero fields do not filter.
type OrderFilter struct {
	Status string
	Client string
	From   *time.Time
	To     *time.Time
}

var (
	ErrNoRows        = errors.New("no rows")
	ErrAlreadyExists = errors.New("already exists")
	ErrOutOfStock    = errors.New("out of stock")
)

const pgUniqueViolation = "23505"

type store struct {
	database *sql.DB
}

func NewStore(cfg config.Config) (Store, error) {
	db, err := sql.Open("pgx", cfg.DBDsn)
	if err != nil {
		return nil, err
	}

	// Таблица учетных записей
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS auth (" +
			" login VARCHAR (50) PRIMARY KEY," +
			" uuid SERIAL UNIQUE," +
			" password VARCHAR (100) NOT NULL" +
			" );")
	if err != nil {
		return nil, err
	}

	// Каталог товаров. Цена хранится либо одним числом (price_kind = 0),
	// либо уже разнесенной по валютам (price_kind = 1)
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS product (" +
			" id VARCHAR (64) PRIMARY KEY," +
			" name VARCHAR (200) NOT NULL," +
			" price_kind SMALLINT NOT NULL," +
			" price NUMERIC NOT NULL DEFAULT 0," +
			" price_uzs NUMERIC NOT NULL DEFAULT 0," +
			" price_usd NUMERIC NOT NULL DEFAULT 0," +
			" currency VARCHAR (10) NOT NULL," +
			" quantity NUMERIC NOT NULL DEFAULT 0" +
			" );")
	if err != nil {
		return nil, err
	}

	// Номера заказов: значение последовательности + контрольная цифра Луна
	_, err = db.Exec("CREATE SEQUENCE IF NOT EXISTS purchase_order_seq START 1000;")
	if err != nil {
		return nil, err
	}

	// Таблица заказов. Итоги хранятся так, как их посчитал сервис
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS purchase_order (" +
			" number VARCHAR (20) PRIMARY KEY," +
			" created_by VARCHAR (20) NOT NULL," +
			" client VARCHAR (200) NOT NULL," +
			" client_phone VARCHAR (30) NOT NULL," +
			" branch VARCHAR (100) NOT NULL," +
			" lines JSONB NOT NULL," +
			" payment_type VARCHAR (10) NOT NULL," +
			" status VARCHAR (10) NOT NULL," +
			" total_uzs NUMERIC NOT NULL, total_usd NUMERIC NOT NULL," +
			" paid_uzs NUMERIC NOT NULL, paid_usd NUMERIC NOT NULL," +
			" debt_uzs NUMERIC NOT NULL, debt_usd NUMERIC NOT NULL," +
			" date_returned TIMESTAMPTZ," +
			" notes TEXT NOT NULL," +
			" created_at TIMESTAMPTZ NOT NULL" +
			" );")
	if err != nil {
		return nil, err
	}

	// Должники. Одна строка на долг, статус пересчитывается при каждой оплате
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS debtor (" +
			" id UUID PRIMARY KEY," +
			" client_name VARCHAR (200) NOT NULL," +
			" client_phone VARCHAR (30) NOT NULL," +
			" description TEXT NOT NULL," +
			" purchase_order VARCHAR (20) NOT NULL," +
			" initial_debt NUMERIC NOT NULL," +
			" current_debt NUMERIC NOT NULL," +
			" total_paid NUMERIC NOT NULL," +
			" last_payment_amount NUMERIC," +
			" last_payment_date TIMESTAMPTZ," +
			" next_payment_amount NUMERIC," +
			" next_payment_due TIMESTAMPTZ," +
			" status VARCHAR (10) NOT NULL," +
			" created_at TIMESTAMPTZ NOT NULL," +
			" updated_at TIMESTAMPTZ NOT NULL," +
			" last_reminded_at TIMESTAMPTZ" +
			" );")
	if err != nil {
		return nil, err
	}
	// базы, созданные до появления напоминаний
	_, err = db.Exec("ALTER TABLE debtor ADD COLUMN IF NOT EXISTS last_reminded_at TIMESTAMPTZ;")
	if err != nil {
		return nil, err
	}

	// Журнал оплат должников. Записи только добавляются
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS debtor_payment (" +
			" debtor_id UUID NOT NULL REFERENCES debtor (id) ON DELETE CASCADE," +
			" operation SERIAL," +
			" amount_uzs NUMERIC NOT NULL," +
			" amount_usd NUMERIC NOT NULL," +
			" applied_at TIMESTAMPTZ NOT NULL," +
			" PRIMARY KEY (debtor_id, operation)" +
			" );")
	if err != nil {
		return nil, err
	}

	// Касса: приход и расход наличных вне заказов
	_, err = db.Exec(
		"CREATE TABLE IF NOT EXISTS cash_transaction (" +
			" id UUID PRIMARY KEY," +
			" type VARCHAR (10) NOT NULL," +
			" payment_type VARCHAR (10) NOT NULL," +
			" amount NUMERIC NOT NULL," +
			" currency VARCHAR (10) NOT NULL," +
			" description TEXT NOT NULL," +
			" client VARCHAR (200) NOT NULL," +
			" branch VARCHAR (100) NOT NULL," +
			" created_by VARCHAR (20) NOT NULL," +
			" created_at TIMESTAMPTZ NOT NULL" +
			" );")
	if err != nil {
		return nil, err
	}

	return &store{
		database: db,
	}, nil
}

func (store *store) Close() error {
	return store.database.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// execer and querier are satisfied by *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Учетные записи

func (store *store) AuthRegister(ctx context.Context, login string, passwordHash string) (string, error) {
	row := store.database.QueryRowContext(ctx,
		"INSERT INTO auth (login, password)"+
			" VALUES ($1, $2)"+
			" RETURNING uuid",
		login,
		passwordHash)

	var uuid int
	err := row.Scan(&uuid)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrAlreadyExists
		}
		return "", err
	}

	return strconv.Itoa(uuid), nil
}

func (store *store) AuthLogin(ctx context.Context, login string) (string, string, error) {
	row := store.database.QueryRowContext(ctx,
		"SELECT uuid, password FROM auth"+
			" WHERE login = $1",
		login)
	var uuid int
	var hash string
	err := row.Scan(&uuid, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrNoRows
		}
		return "", "", err
	}

	return strconv.Itoa(uuid), hash, nil
}

// Товары

const productColumns = "id, name, price_kind, price, price_uzs, price_usd, currency, quantity"

func scanProduct(row scanner) (model.Product, error) {
	var p model.Product
	var kind int
	var scalar, uzs, usd decimal.Decimal
	err := row.Scan(&p.ID, &p.Name, &kind, &scalar, &uzs, &usd, &p.Currency, &p.Quantity)
	if err != nil {
		return model.Product{}, err
	}
	if model.PriceKind(kind) == model.PriceSplit {
		p.UnitPrice = model.SplitPrice(money.FromDecimal(uzs, usd))
	} else {
		p.UnitPrice = model.ScalarPrice(scalar)
	}
	return p, nil
}

func (store *store) ProductPut(ctx context.Context, product model.Product) error {
	_, err := store.database.ExecContext(ctx,
		"INSERT INTO product ("+productColumns+")"+
			" VALUES ($1, $2, $3, $4, $5, $6, $7, $8)"+
			" ON CONFLICT (id) DO UPDATE SET"+
			"   name = EXCLUDED.name, price_kind = EXCLUDED.price_kind, price = EXCLUDED.price,"+
			"   price_uzs = EXCLUDED.price_uzs, price_usd = EXCLUDED.price_usd,"+
			"   currency = EXCLUDED.currency, quantity = EXCLUDED.quantity",
		product.ID,
		product.Name,
		int(product.UnitPrice.Kind),
		product.UnitPrice.Scalar,
		product.UnitPrice.Split.Local,
		product.UnitPrice.Split.Hard,
		product.Currency,
		product.Quantity)
	return err
}

func (store *store) ProductGet(ctx context.Context, id string) (model.Product, error) {
	row := store.database.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM product WHERE id = $1", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, ErrNoRows
	}
	return p, err
}

// ProductList returns the products with the given ids, or all of them when
// ids is empty.
func (store *store) ProductList(ctx context.Context, ids []string) ([]model.Product, error) {
	query := "SELECT " + productColumns + " FROM product"
	var args []any
	if len(ids) > 0 {
		query += " WHERE id = ANY($1)"
		args = append(args, ids)
	}
	query += " ORDER BY name"

	rows, err := store.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (store *store) ProductDelete(ctx context.Context, id string) error {
	res, err := store.database.ExecContext(ctx, "DELETE FROM product WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// moveStock applies take product by product in id order. Goods are taken
// only while enough is left, so two orders cannot both get the last unit.
// Returns to stock of a deleted product are dropped.
func moveStock(ctx context.Context, db execer, take StockMove) error {
	ids := make([]string, 0, len(take))
	for id := range take {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		qty := take[id]
		if !qty.IsPositive() {
			_, err := db.ExecContext(ctx,
				"UPDATE product SET quantity = quantity - $1 WHERE id = $2", qty, id)
			if err != nil {
				return err
			}
			continue
		}
		res, err := db.ExecContext(ctx,
			"UPDATE product"+
				" SET quantity = quantity - $1"+
				" WHERE id = $2 AND quantity >= $1",
			qty,
			id)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return fmt.Errorf("product %s: %w", id, ErrOutOfStock)
		}
	}
	return nil
}

// Заказы

type lineJSON struct {
	Product  string          `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    model.UnitPrice `json:"price"`
}

const orderColumns = "number, created_by, client, client_phone, branch, lines, payment_type, status," +
	" total_uzs, total_usd, paid_uzs, paid_usd, debt_uzs, debt_usd, date_returned, notes, created_at"

func scanOrder(row scanner) (model.Order, error) {
	var o model.Order
	var linesRaw []byte
	var paymentType string
	var dateReturned sql.NullTime
	err := row.Scan(&o.Number,
		&o.Data.CreatedBy,
		&o.Data.Client,
		&o.Data.ClientPhone,
		&o.Data.Branch,
		&linesRaw,
		&paymentType,
		&o.Data.Status,
		&o.Data.TotalAmount.Local, &o.Data.TotalAmount.Hard,
		&o.Data.PaidAmount.Local, &o.Data.PaidAmount.Hard,
		&o.Data.DebtAmount.Local, &o.Data.DebtAmount.Hard,
		&dateReturned,
		&o.Data.Notes,
		&o.Data.CreatedAt)
	if err != nil {
		return model.Order{}, err
	}
	o.Data.PaymentType = model.PaymentMethod(paymentType)
	if dateReturned.Valid {
		t := dateReturned.Time
		o.Data.DateReturned = &t
	}

	var lines []lineJSON
	if err := json.Unmarshal(linesRaw, &lines); err != nil {
		return model.Order{}, fmt.Errorf("order %s lines: %w", o.Number, err)
	}
	for _, l := range lines {
		o.Data.Lines = append(o.Data.Lines, model.OrderLine{ProductID: l.Product, Quantity: l.Quantity, UnitPrice: l.Price})
	}
	return o, nil
}

func (store *store) PurchaseOrderNextSeq(ctx context.Context) (int, error) {
	var seq int
	err := store.database.QueryRowContext(ctx, "SELECT nextval('purchase_order_seq')").Scan(&seq)
	return seq, err
}

func marshalLines(order model.Order) ([]byte, error) {
	lines := make([]lineJSON, 0, len(order.Data.Lines))
	for _, l := range order.Data.Lines {
		lines = append(lines, lineJSON{Product: l.ProductID, Quantity: l.Quantity, Price: l.UnitPrice})
	}
	return json.Marshal(lines)
}

// PurchaseOrderPost writes the order, takes its goods from stock and, for a
// credit order, opens the debtor, in one transaction.
func (store *store) PurchaseOrderPost(ctx context.Context, order model.Order, take StockMove, debtor *model.Debtor) error {
	linesRaw, err := marshalLines(order)
	if err != nil {
		return err
	}

	tx, err := store.database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO purchase_order ("+orderColumns+")"+
			" VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)",
		order.Number,
		order.Data.CreatedBy,
		order.Data.Client,
		order.Data.ClientPhone,
		order.Data.Branch,
		linesRaw,
		string(order.Data.PaymentType),
		order.Data.Status,
		order.Data.TotalAmount.Local, order.Data.TotalAmount.Hard,
		order.Data.PaidAmount.Local, order.Data.PaidAmount.Hard,
		order.Data.DebtAmount.Local, order.Data.DebtAmount.Hard,
		nullTime(order.Data.DateReturned),
		order.Data.Notes,
		order.Data.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}

	if err := moveStock(ctx, tx, take); err != nil {
		return err
	}

	if debtor != nil {
		if err := insertDebtor(ctx, tx, *debtor); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// PurchaseOrderPut rewrites an edited order. Number, author, status and
// creation time stay as stored. In the same transaction it moves the stock
// difference and settles the debtor the order opened: an existing one is
// passed to reprice under its row lock, otherwise open is inserted when given.
func (store *store) PurchaseOrderPut(ctx context.Context, order model.Order, take StockMove, open *model.Debtor, reprice DebtorFunc) error {
	linesRaw, err := marshalLines(order)
	if err != nil {
		return err
	}

	tx, err := store.database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE purchase_order SET"+
			" client = $1, client_phone = $2, branch = $3, lines = $4, payment_type = $5,"+
			" total_uzs = $6, total_usd = $7, paid_uzs = $8, paid_usd = $9, debt_uzs = $10, debt_usd = $11,"+
			" date_returned = $12, notes = $13"+
			" WHERE number = $14",
		order.Data.Client,
		order.Data.ClientPhone,
		order.Data.Branch,
		linesRaw,
		string(order.Data.PaymentType),
		order.Data.TotalAmount.Local, order.Data.TotalAmount.Hard,
		order.Data.PaidAmount.Local, order.Data.PaidAmount.Hard,
		order.Data.DebtAmount.Local, order.Data.DebtAmount.Hard,
		nullTime(order.Data.DateReturned),
		order.Data.Notes,
		order.Number)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}

	if err := moveStock(ctx, tx, take); err != nil {
		return err
	}

	var debtorID string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM debtor"+
			" WHERE purchase_order = $1"+
			" ORDER BY created_at"+
			" LIMIT 1",
		order.Number).Scan(&debtorID)
	switch {
	case err == nil:
		if reprice == nil {
			break
		}
		current, err := lockDebtor(ctx, tx, debtorID)
		if err != nil {
			return err
		}
		data, err := reprice(current)
		if err != nil {
			return err
		}
		if err := updateDebtor(ctx, tx, debtorID, data); err != nil {
			return err
		}
	case errors.Is(err, sql.ErrNoRows):
		if open != nil {
			if err := insertDebtor(ctx, tx, *open); err != nil {
				return err
			}
		}
	default:
		return err
	}

	return tx.Commit()
}

func (store *store) PurchaseOrderGet(ctx context.Context, number string) (model.Order, error) {
	row := store.database.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM purchase_order WHERE number = $1", number)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrNoRows
	}
	return o, err
}

func (store *store) PurchaseOrderList(ctx context.Context, filter OrderFilter) ([]model.Order, error) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Client != "" {
		add("client ILIKE $%d", "%"+filter.Client+"%")
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at < $%d", *filter.To)
	}

	query := "SELECT " + orderColumns + " FROM purchase_order"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := store.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (store *store) PurchaseOrderPutStatus(ctx context.Context, number string, status string) error {
	res, err := store.database.ExecContext(ctx,
		"UPDATE purchase_order"+
			" SET status = $1"+
			" WHERE number = $2",
		status,
		number)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Должники

const debtorColumns = "id, client_name, client_phone, description, purchase_order," +
	" initial_debt, current_debt, total_paid, last_payment_amount, last_payment_date," +
	" next_payment_amount, next_payment_due, status, created_at, updated_at, last_reminded_at"

// debtorSet assigns the non-key columns from $1..$15, in debtorArgs order
const debtorSet = "client_name = $1, client_phone = $2, description = $3, purchase_order = $4," +
	" initial_debt = $5, current_debt = $6, total_paid = $7," +
	" last_payment_amount = $8, last_payment_date = $9," +
	" next_payment_amount = $10, next_payment_due = $11," +
	" status = $12, created_at = $13, updated_at = $14, last_reminded_at = $15"

func scanDebtor(row scanner) (model.Debtor, error) {
	var d model.Debtor
	var lastAmount, nextAmount decimal.NullDecimal
	var lastDate, nextDue, reminded sql.NullTime
	err := row.Scan(&d.ID,
		&d.Data.ClientName,
		&d.Data.ClientPhone,
		&d.Data.Description,
		&d.Data.Order,
		&d.Data.InitialDebt,
		&d.Data.CurrentDebt,
		&d.Data.TotalPaid,
		&lastAmount,
		&lastDate,
		&nextAmount,
		&nextDue,
		&d.Data.Status,
		&d.Data.CreatedAt,
		&d.Data.UpdatedAt,
		&reminded)
	if err != nil {
		return model.Debtor{}, err
	}
	if reminded.Valid {
		t := reminded.Time
		d.Data.LastRemindedAt = &t
	}
	if lastDate.Valid {
		d.Data.LastPayment = &model.LastPayment{Amount: lastAmount.Decimal, Date: lastDate.Time}
	}
	if nextAmount.Valid || nextDue.Valid {
		next := &model.NextPayment{Amount: nextAmount.Decimal}
		if nextDue.Valid {
			t := nextDue.Time
			next.DueDate = &t
		}
		d.Data.NextPayment = next
	}
	return d, nil
}

// debtorArgs returns the non-key column values in debtorColumns order.
func debtorArgs(d model.DebtorData) []any {
	var lastAmount, nextAmount decimal.NullDecimal
	var lastDate, nextDue sql.NullTime
	if d.LastPayment != nil {
		lastAmount = decimal.NewNullDecimal(d.LastPayment.Amount)
		lastDate = sql.NullTime{Time: d.LastPayment.Date, Valid: true}
	}
	if d.NextPayment != nil {
		nextAmount = decimal.NewNullDecimal(d.NextPayment.Amount)
		nextDue = nullTime(d.NextPayment.DueDate)
	}
	return []any{
		d.ClientName, d.ClientPhone, d.Description, d.Order,
		d.InitialDebt, d.CurrentDebt, d.TotalPaid,
		lastAmount, lastDate, nextAmount, nextDue,
		d.Status, d.CreatedAt, d.UpdatedAt, nullTime(d.LastRemindedAt),
	}
}

func insertDebtor(ctx context.Context, db execer, debtor model.Debtor) error {
	args := append([]any{debtor.ID}, debtorArgs(debtor.Data)...)
	_, err := db.ExecContext(ctx,
		"INSERT INTO debtor ("+debtorColumns+")"+
			" VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)",
		args...)
	if err != nil && isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func updateDebtor(ctx context.Context, db execer, id string, data model.DebtorData) error {
	args := append(debtorArgs(data), id)
	res, err := db.ExecContext(ctx,
		"UPDATE debtor SET "+debtorSet+" WHERE id = $16",
		args...)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (store *store) DebtorPost(ctx context.Context, debtor model.Debtor) error {
	return insertDebtor(ctx, store.database, debtor)
}

func (store *store) DebtorGet(ctx context.Context, id string) (model.Debtor, error) {
	row := store.database.QueryRowContext(ctx,
		"SELECT "+debtorColumns+" FROM debtor WHERE id = $1", id)
	d, err := scanDebtor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Debtor{}, ErrNoRows
	}
	return d, err
}

func (store *store) DebtorList(ctx context.Context) ([]model.Debtor, error) {
	rows, err := store.database.QueryContext(ctx,
		"SELECT "+debtorColumns+" FROM debtor ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var debtors []model.Debtor
	for rows.Next() {
		d, err := scanDebtor(rows)
		if err != nil {
			return nil, err
		}
		debtors = append(debtors, d)
	}
	return debtors, rows.Err()
}

func (store *store) DebtorDelete(ctx context.Context, id string) error {
	res, err := store.database.ExecContext(ctx, "DELETE FROM debtor WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// lockDebtor reads the debtor row FOR UPDATE together with its payment journal.
func lockDebtor(ctx context.Context, tx *sql.Tx, id string) (model.DebtorData, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+debtorColumns+" FROM debtor WHERE id = $1 FOR UPDATE", id)
	current, err := scanDebtor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DebtorData{}, ErrNoRows
		}
		return model.DebtorData{}, err
	}
	current.Data.Payments, err = debtorPayments(ctx, tx, id)
	if err != nil {
		return model.DebtorData{}, err
	}
	return current.Data, nil
}

// DebtorUpdate locks the debtor row, lets update compute the new state and
// stores it.
func (store *store) DebtorUpdate(ctx context.Context, id string, update DebtorFunc) (model.Debtor, error) {
	tx, err := store.database.BeginTx(ctx, nil)
	if err != nil {
		return model.Debtor{}, err
	}
	defer tx.Rollback()

	current, err := lockDebtor(ctx, tx, id)
	if err != nil {
		return model.Debtor{}, err
	}

	data, err := update(current)
	if err != nil {
		return model.Debtor{}, err
	}
	if err := updateDebtor(ctx, tx, id, data); err != nil {
		return model.Debtor{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Debtor{}, err
	}
	return model.Debtor{ID: id, Data: data}, nil
}

// DebtorApplyPayment locks the debtor row, lets apply compute the new state,
// stores it and appends the payment to the journal. The returned debtor
// carries the whole journal, the new payment included.
func (store *store) DebtorApplyPayment(ctx context.Context, id string, apply PaymentFunc) (model.Debtor, error) {
	tx, err := store.database.BeginTx(ctx, nil)
	if err != nil {
		return model.Debtor{}, err
	}
	defer tx.Rollback()

	current, err := lockDebtor(ctx, tx, id)
	if err != nil {
		return model.Debtor{}, err
	}

	data, record, err := apply(current)
	if err != nil {
		return model.Debtor{}, err
	}
	if err := updateDebtor(ctx, tx, id, data); err != nil {
		return model.Debtor{}, err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO debtor_payment (debtor_id, amount_uzs, amount_usd, applied_at)"+
			" VALUES ($1, $2, $3, $4)",
		id,
		record.Amount.Local,
		record.Amount.Hard,
		record.AppliedAt)
	if err != nil {
		return model.Debtor{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Debtor{}, err
	}
	return model.Debtor{ID: id, Data: data}, nil
}

func (store *store) DebtorPayments(ctx context.Context, id string) ([]model.PaymentRecord, error) {
	return debtorPayments(ctx, store.database, id)
}

func debtorPayments(ctx context.Context, db querier, id string) ([]model.PaymentRecord, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT amount_uzs, amount_usd, applied_at"+
			" FROM debtor_payment"+
			" WHERE debtor_id = $1"+
			" ORDER BY operation",
		id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []model.PaymentRecord
	for rows.Next() {
		var p model.PaymentRecord
		if err := rows.Scan(&p.Amount.Local, &p.Amount.Hard, &p.AppliedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// DebtorPutReminded stamps the time of the last overdue SMS.
func (store *store) DebtorPutReminded(ctx context.Context, id string, at time.Time) error {
	res, err := store.database.ExecContext(ctx,
		"UPDATE debtor"+
			" SET last_reminded_at = $1"+
			" WHERE id = $2",
		at,
		id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Касса

const cashColumns = "id, type, payment_type, amount, currency, description, client, branch, created_by, created_at"

func (store *store) CashTransactionPost(ctx context.Context, entry model.CashTransaction) error {
	_, err := store.database.ExecContext(ctx,
		"INSERT INTO cash_transaction ("+cashColumns+")"+
			" VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
		entry.ID,
		entry.Data.Type,
		string(entry.Data.PaymentType),
		entry.Data.Amount,
		entry.Data.Currency,
		entry.Data.Description,
		entry.Data.Client,
		entry.Data.Branch,
		entry.Data.CreatedBy,
		entry.Data.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (store *store) CashTransactionList(ctx context.Context, filter CashFilter) ([]model.CashTransaction, error) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.PaymentType != "" {
		add("payment_type = $%d", filter.PaymentType)
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at < $%d", *filter.To)
	}

	query := "SELECT " + cashColumns + " FROM cash_transaction"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := store.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.CashTransaction
	for rows.Next() {
		var e model.CashTransaction
		var paymentType string
		err := rows.Scan(&e.ID,
			&e.Data.Type,
			&paymentType,
			&e.Data.Amount,
			&e.Data.Currency,
			&e.Data.Description,
			&e.Data.Client,
			&e.Data.Branch,
			&e.Data.CreatedBy,
			&e.Data.CreatedAt)
		if err != nil {
			return nil, err
		}
		e.Data.PaymentType = model.PaymentMethod(paymentType)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (store *store) CashTransactionDelete(ctx context.Context, id string) error {
	res, err := store.database.ExecContext(ctx, "DELETE FROM cash_transaction WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRows
	}
	return nil
}
