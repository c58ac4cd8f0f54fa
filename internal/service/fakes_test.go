package service_test

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/bereketg/artisan-market/internal/domain/models"
	"github.com/bereketg/artisan-market/internal/payment/chapa"
	"github.com/bereketg/artisan-market/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// fakeUserRepo - in-memory UserStorage, keyed by email
type fakeUserRepo struct {
	users map[string]*models.User
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Email]; ok {
		return nil, storage.ErrEmailTaken
	}
	user.ID = int64(len(f.users) + 1)
	f.users[user.Email] = user
	return user, nil
}

// fakeProductRepo - in-memory ProductStorage
type fakeProductRepo struct {
	products map[int64]*models.Product
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	f := &fakeProductRepo{products: make(map[int64]*models.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProductRepo) ListProducts(ctx context.Context, category string) ([]*models.Product, error) {
	var out []*models.Product
	for _, p := range f.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	p.ID = int64(len(f.products) + 1)
	p.CreatedAt = time.Now()
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeProductRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	existing, ok := f.products[p.ID]
	if !ok {
		return storage.ErrProductNotFound
	}
	p.ArtisanID = existing.ArtisanID
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) DeleteProduct(ctx context.Context, id int64) error {
	if _, ok := f.products[id]; !ok {
		return storage.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) LockProductByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	return f.GetProductByID(ctx, id)
}

func (f *fakeProductRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, id int64, by int) error {
	p, ok := f.products[id]
	if !ok || p.Stock < by {
		return storage.ErrProductNotFound
	}
	p.Stock -= by
	return nil
}

// fakeCartRepo - in-memory CartStorage
type fakeCartRepo struct {
	carts map[int64]*models.Cart
}

var _ storage.CartStorage = (*fakeCartRepo)(nil)

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[int64]*models.Cart)}
}

func (f *fakeCartRepo) LoadCart(ctx context.Context, userID int64) (*models.Cart, error) {
	if cart, ok := f.carts[userID]; ok {
		return cart, nil
	}
	return &models.Cart{UserID: userID}, nil
}

func (f *fakeCartRepo) SaveCart(ctx context.Context, cart *models.Cart) error {
	f.carts[cart.UserID] = cart
	return nil
}

func (f *fakeCartRepo) DeleteCart(ctx context.Context, userID int64) error {
	delete(f.carts, userID)
	return nil
}

// fakeOrderRepo - in-memory OrderStorage
type fakeOrderRepo struct {
	orders map[int64]*models.Order
	nextID int64
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*models.Order)}
}

func (f *fakeOrderRepo) CreateOrderTx(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	f.nextID++
	stored := *order
	stored.ID = f.nextID
	stored.CreatedAt = time.Now()
	f.orders[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, storage.ErrOrderNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) GetOrdersByCustomerID(ctx context.Context, customerID int64) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) GetOrdersByArtisanID(ctx context.Context, artisanID int64) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range f.orders {
		if o.ArtisanID == artisanID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListOrders(ctx context.Context) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range f.orders {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	order, ok := f.orders[id]
	if !ok {
		return storage.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (f *fakeOrderRepo) UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus) error {
	order, ok := f.orders[id]
	if !ok {
		return storage.ErrOrderNotFound
	}
	order.PaymentStatus = status
	return nil
}

// fakePaymentRepo - in-memory PaymentStorage keyed by tx_ref
type fakePaymentRepo struct {
	transactions map[string]*models.PaymentTransaction
}

var _ storage.PaymentStorage = (*fakePaymentRepo)(nil)

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{transactions: make(map[string]*models.PaymentTransaction)}
}

func (f *fakePaymentRepo) CreateTransaction(ctx context.Context, p *models.PaymentTransaction) (*models.PaymentTransaction, error) {
	if _, ok := f.transactions[p.TxRef]; ok {
		return nil, storage.ErrTxRefTaken
	}
	p.ID = int64(len(f.transactions) + 1)
	p.CreatedAt = time.Now()
	f.transactions[p.TxRef] = p
	return p, nil
}

func (f *fakePaymentRepo) GetByTxRef(ctx context.Context, txRef string) (*models.PaymentTransaction, error) {
	p, ok := f.transactions[txRef]
	if !ok {
		return nil, storage.ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakePaymentRepo) SetCheckoutURL(ctx context.Context, txRef, url string) error {
	p, ok := f.transactions[txRef]
	if !ok {
		return storage.ErrPaymentNotFound
	}
	p.CheckoutURL = url
	return nil
}

// fakeCommentRepo - in-memory CommentStorage
type fakeCommentRepo struct {
	comments map[int64]*models.Comment
	nextID   int64
}

var _ storage.CommentStorage = (*fakeCommentRepo)(nil)

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[int64]*models.Comment)}
}

func (f *fakeCommentRepo) CreateComment(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	f.comments[c.ID] = c
	return c, nil
}

func (f *fakeCommentRepo) GetCommentByID(ctx context.Context, id int64) (*models.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, storage.ErrCommentNotFound
	}
	return c, nil
}

func (f *fakeCommentRepo) GetCommentsByProductID(ctx context.Context, productID int64) ([]*models.Comment, error) {
	var out []*models.Comment
	for _, c := range f.comments {
		if c.ProductID == productID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) DeleteComment(ctx context.Context, id int64) error {
	if _, ok := f.comments[id]; !ok {
		return storage.ErrCommentNotFound
	}
	delete(f.comments, id)
	return nil
}

// fakeGateway - scripted payment provider
type fakeGateway struct {
	initResp   *chapa.InitializeResponse
	initErr    error
	initCalls  int
	verifyResp *chapa.VerifyResponse
	verifyErr  error
}

func (f *fakeGateway) Initialize(ctx context.Context, req *chapa.InitializeRequest) (*chapa.InitializeResponse, error) {
	f.initCalls++
	if f.initErr != nil {
		return f.initResp, f.initErr
	}
	if f.initResp != nil {
		return f.initResp, nil
	}
	resp := &chapa.InitializeResponse{Status: "success"}
	resp.Data.CheckoutURL = "https://checkout.chapa.co/checkout/payment/" + req.TxRef
	return resp, nil
}

func (f *fakeGateway) Verify(ctx context.Context, txRef string) (*chapa.VerifyResponse, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	if f.verifyResp != nil {
		return f.verifyResp, nil
	}
	return nil, errors.New("no scripted verify response")
}
