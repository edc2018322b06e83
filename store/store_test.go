package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crm"
	"github.com/syssam/crm/dialect"
	"github.com/syssam/crm/dialect/sql"
	"github.com/syssam/crm/store"
	"github.com/syssam/crm/store/storetest"
)

func strptr(s string) *string { return &s }

func intptr(i int) *int { return &i }

func TestCustomerClient(t *testing.T) {
	ctx := context.Background()
	client := storetest.Open(t)

	alice, err := client.Customer.Create(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com", Phone: strptr("+1234567890")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, alice.ID)
	require.NotNil(t, alice.Phone)
	assert.Equal(t, "+1234567890", *alice.Phone)

	bob, err := client.Customer.Create(ctx, crm.CustomerInput{Name: "Bob", Email: "bob@example.com", Phone: strptr("")})
	require.NoError(t, err)
	assert.Nil(t, bob.Phone)

	t.Run("Get", func(t *testing.T) {
		got, err := client.Customer.Get(ctx, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, bob, got)

		_, err = client.Customer.Get(ctx, 99)
		require.Error(t, err)
		assert.True(t, crm.IsNotFound(err))
	})

	t.Run("All", func(t *testing.T) {
		all, err := client.Customer.All(ctx)
		require.NoError(t, err)
		assert.Equal(t, []*crm.Customer{alice, bob}, all)
	})

	t.Run("GetMany", func(t *testing.T) {
		got, err := client.Customer.GetMany(ctx, []int64{bob.ID, 42, alice.ID})
		require.NoError(t, err)
		assert.Equal(t, []*crm.Customer{alice, bob}, got)

		got, err = client.Customer.GetMany(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		_, err := client.Customer.Create(ctx, crm.CustomerInput{Name: "Other", Email: "alice@example.com"})
		require.Error(t, err)
		assert.True(t, crm.IsMutationError(err))
		assert.True(t, crm.IsConstraintError(err))
		assert.Equal(t, crm.MsgEmailExists, crm.PublicMessage(err))
	})
}

func TestCustomerClient_AllEmpty(t *testing.T) {
	client := storetest.Open(t)
	all, err := client.Customer.All(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestProductClient(t *testing.T) {
	ctx := context.Background()
	client := storetest.Open(t)

	laptop, err := client.Product.Create(ctx, crm.ProductInput{Name: "Laptop", Price: decimal.RequireFromString("999.99"), Stock: intptr(10)})
	require.NoError(t, err)
	mouse, err := client.Product.Create(ctx, crm.ProductInput{Name: "Mouse", Price: decimal.RequireFromString("5.50")})
	require.NoError(t, err)
	assert.Zero(t, mouse.Stock)

	all, err := client.Product.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, laptop.Price.Equal(all[0].Price), all[0].Price.String())
	assert.Equal(t, 10, all[0].Stock)
	assert.Equal(t, "Mouse", all[1].Name)

	t.Run("GetMany", func(t *testing.T) {
		got, err := client.Product.GetMany(ctx, []int64{mouse.ID, mouse.ID, 77})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, mouse.ID, got[0].ID)
	})

	t.Run("CheckConstraint", func(t *testing.T) {
		_, err := client.Product.Create(ctx, crm.ProductInput{Name: "Free", Price: decimal.Zero})
		require.Error(t, err)
		assert.True(t, crm.IsConstraintError(err))
	})
}

func TestOrderClient(t *testing.T) {
	ctx := context.Background()
	client := storetest.Open(t)

	alice, err := client.Customer.Create(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	p1, err := client.Product.Create(ctx, crm.ProductInput{Name: "A", Price: decimal.RequireFromString("10.00")})
	require.NoError(t, err)
	p2, err := client.Product.Create(ctx, crm.ProductInput{Name: "B", Price: decimal.RequireFromString("5.50")})
	require.NoError(t, err)

	date := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	o, err := client.Order.Create(ctx, crm.Order{
		CustomerID:  alice.ID,
		TotalAmount: decimal.RequireFromString("15.50"),
		OrderDate:   date,
	})
	require.NoError(t, err)
	require.NoError(t, client.Order.AddProducts(ctx, o.ID, p2.ID, p1.ID))

	got, err := client.Order.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.CustomerID)
	assert.True(t, decimal.RequireFromString("15.5").Equal(got.TotalAmount))
	assert.True(t, date.Equal(got.OrderDate), got.OrderDate.String())

	products, err := client.Product.ByOrderIDs(ctx, []int64{o.ID, 404})
	require.NoError(t, err)
	require.Len(t, products[o.ID], 2)
	assert.Equal(t, p1.ID, products[o.ID][0].ID)
	assert.Equal(t, p2.ID, products[o.ID][1].ID)
	assert.Empty(t, products[404])

	orders, err := client.Order.ByCustomerIDs(ctx, []int64{alice.ID})
	require.NoError(t, err)
	require.Len(t, orders[alice.ID], 1)
	assert.Equal(t, o.ID, orders[alice.ID][0].ID)

	all, err := client.Order.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = client.Order.Get(ctx, 404)
	assert.True(t, crm.IsNotFound(err))

	t.Run("UnknownCustomer", func(t *testing.T) {
		_, err := client.Order.Create(ctx, crm.Order{CustomerID: 404, TotalAmount: decimal.NewFromInt(1), OrderDate: date})
		require.Error(t, err)
		assert.True(t, crm.IsConstraintError(err))
	})

	t.Run("DuplicateLink", func(t *testing.T) {
		err := client.Order.AddProducts(ctx, o.ID, p1.ID)
		require.Error(t, err)
		assert.True(t, crm.IsConstraintError(err))
	})
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	client := storetest.Open(t)

	t.Run("Commit", func(t *testing.T) {
		var committed bool
		err := store.WithTx(ctx, client, func(tx *store.Tx) error {
			tx.OnCommit(func(next store.Committer) store.Committer {
				return store.CommitFunc(func(ctx context.Context, tx *store.Tx) error {
					err := next.Commit(ctx, tx)
					committed = err == nil
					return err
				})
			})
			_, err := tx.Client().Customer.Create(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
			return err
		})
		require.NoError(t, err)
		assert.True(t, committed)
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		var rolledBack bool
		boom := errors.New("boom")
		err := store.WithTx(ctx, client, func(tx *store.Tx) error {
			tx.OnRollback(func(next store.Rollbacker) store.Rollbacker {
				return store.RollbackFunc(func(ctx context.Context, tx *store.Tx) error {
					rolledBack = true
					return next.Rollback(ctx, tx)
				})
			})
			if _, err := tx.Client().Customer.Create(ctx, crm.CustomerInput{Name: "Bob", Email: "bob@example.com"}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.True(t, rolledBack)
	})

	t.Run("RollbackOnPanic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = store.WithTx(ctx, client, func(tx *store.Tx) error {
				_, _ = tx.Client().Customer.Create(ctx, crm.CustomerInput{Name: "Carol", Email: "carol@example.com"})
				panic("boom")
			})
		})
	})

	t.Run("Nested", func(t *testing.T) {
		err := store.WithTx(ctx, client, func(tx *store.Tx) error {
			_, err := tx.Client().Tx(ctx)
			return err
		})
		require.ErrorIs(t, err, crm.ErrTxStarted)
	})

	all, err := client.Customer.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "alice@example.com", all[0].Email)
}

func TestClient_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	client := store.NewClient(sql.OpenDB(dialect.Postgres, db))
	assert.Equal(t, dialect.Postgres, client.Dialect())
	ctx := context.Background()

	mock.ExpectQuery(`INSERT INTO customers \(name, email, phone\) VALUES \(\$1, \$2, \$3\) RETURNING id`).
		WithArgs("Alice", "alice@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	cu, err := client.Customer.Create(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.EqualValues(t, 7, cu.ID)

	mock.ExpectQuery(`INSERT INTO customers`).
		WillReturnError(&pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "customers_email_key"`})
	_, err = client.Customer.Create(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
	require.Error(t, err)
	assert.Equal(t, crm.MsgEmailExists, crm.PublicMessage(err))

	mock.ExpectQuery(`SELECT p.id, p.name, p.price, p.stock FROM products p WHERE p.id IN \(\$1, \$2\) ORDER BY p.id`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock"}).
			AddRow(1, "A", "1.25", 3).
			AddRow(2, "B", "2.75", 0))
	products, err := client.Product.GetMany(ctx, []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "4", crm.ProductTotal(products).String())

	mock.ExpectQuery(`SELECT id, name, email, phone FROM customers ORDER BY id`).
		WillReturnError(errors.New("connection reset"))
	_, err = client.Customer.All(ctx)
	var qerr *crm.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "customer", qerr.Entity)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_MySQL(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	client := store.NewClient(sql.OpenDB(dialect.MySQL, db))
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO products \(name, price, stock\) VALUES \(\?, \?, \?\)`).
		WithArgs("Pen", sqlmock.AnyArg(), 0).
		WillReturnResult(sqlmock.NewResult(9, 1))
	p, err := client.Product.Create(ctx, crm.ProductInput{Name: "Pen", Price: decimal.RequireFromString("1.50")})
	require.NoError(t, err)
	assert.EqualValues(t, 9, p.ID)

	mock.ExpectExec(`INSERT INTO order_products \(order_id, product_id\) VALUES \(\?, \?\), \(\?, \?\)`).
		WithArgs(int64(1), int64(2), int64(1), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, client.Order.AddProducts(ctx, 1, 2, 3))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	client := store.NewClient(sql.OpenDB(dialect.SQLite, db))

	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("connection lost"))
	boom := errors.New("boom")
	err = store.WithTx(context.Background(), client, func(*store.Tx) error { return boom })
	require.ErrorIs(t, err, boom)
	var rerr *crm.RollbackError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, rerr.Error(), "connection lost")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_StatsDriver(t *testing.T) {
	ctx := context.Background()
	stats := sql.NewStatsDriver(storetest.Driver(t))
	client := store.NewClient(stats)

	err := store.WithTx(ctx, client, func(tx *store.Tx) error {
		_, err := tx.Client().Customer.Create(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
		return err
	})
	require.NoError(t, err)
	_, err = client.Customer.All(ctx)
	require.NoError(t, err)

	snap := stats.Stats()
	assert.EqualValues(t, 2, snap.Queries)
	assert.EqualValues(t, 1, snap.Txs)
	assert.EqualValues(t, 1, snap.Commits)
	assert.Zero(t, snap.Errors)

	t.Run("Rollback", func(t *testing.T) {
		before := stats.Stats()
		err := store.WithTx(ctx, client, func(tx *store.Tx) error {
			_, err := tx.Client().Customer.Create(ctx, crm.CustomerInput{Name: "Alice", Email: "alice@example.com"})
			return err
		})
		require.True(t, crm.IsConstraintError(err))
		delta := stats.Stats().Sub(before)
		assert.EqualValues(t, 1, delta.Rollbacks)
		assert.EqualValues(t, 1, delta.Errors)
		assert.Zero(t, delta.Commits)
	})
}
