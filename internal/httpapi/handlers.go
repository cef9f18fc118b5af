package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/devketanpro/eafoods-preorder/internal/model"
	"github.com/devketanpro/eafoods-preorder/internal/service"
)

const dateLayout = "2006-01-02"

type placeOrderRequest struct {
	ProductName     string `json:"product_name"`
	Quantity        int    `json:"quantity"`
	Slot            string `json:"slot"`
	DeliveryAddress string `json:"delivery_address"`
}

type productRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type productResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type slotResponse struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type stockResponse struct {
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

type orderResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Product         string    `json:"product"`
	Slot            string    `json:"slot"`
	SlotLabel       string    `json:"slot_label"`
	Quantity        int       `json:"quantity"`
	DeliveryAddress string    `json:"delivery_address"`
	DeliveryDate    string    `json:"delivery_date"`
	CreatedAt       time.Time `json:"created_at"`
	IsCancelled     bool      `json:"is_cancelled"`
}

type salesResponse struct {
	Product       productResponse `json:"product"`
	TotalQuantity int             `json:"total_quantity"`
}

func productRefs(products []model.Product) []productRef {
	out := make([]productRef, 0, len(products))
	for _, p := range products {
		out = append(out, productRef{ID: p.ID, Name: p.Name})
	}
	return out
}

func (s *Server) orderResponse(c *fiber.Ctx, o *model.PreOrder) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Slot:            string(o.Slot),
		SlotLabel:       o.Slot.Label(),
		Quantity:        o.Quantity,
		DeliveryAddress: o.DeliveryAddress,
		DeliveryDate:    o.DeliveryDate.Format(dateLayout),
		CreatedAt:       o.CreatedAt,
		IsCancelled:     o.IsCancelled,
	}
	if p, err := s.svc.GetProduct(c.Context(), o.ProductID); err == nil {
		resp.Product = p.Name
	}
	return resp
}

func (s *Server) listProducts(c *fiber.Ctx) error {
	products, err := s.svc.ListProducts(c.Context())
	if err != nil {
		return s.writeError(c, err)
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponse{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	return c.JSON(out)
}

func (s *Server) getProduct(c *fiber.Ctx) error {
	p, err := s.svc.GetProduct(c.Context(), c.Params("id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(productResponse{ID: p.ID, Name: p.Name, Description: p.Description})
}

func (s *Server) resolveProduct(c *fiber.Ctx) error {
	p, err := s.svc.ResolveProduct(c.Context(), c.Query("name"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(productResponse{ID: p.ID, Name: p.Name, Description: p.Description})
}

func (s *Server) listSlots(c *fiber.Ctx) error {
	out := make([]slotResponse, 0, 3)
	for _, slot := range model.Slots() {
		out = append(out, slotResponse{Name: string(slot), Label: slot.Label()})
	}
	return c.JSON(out)
}

func (s *Server) placeOrder(c *fiber.Ctx) error {
	var req placeOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return s.writeError(c, model.Errorf(model.KindInvalidInput, "invalid request body"))
	}

	order, err := s.svc.PlaceOrder(c.Context(), service.PlaceOrderRequest{
		UserID:      userID(c),
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		Slot:        req.Slot,
		Address:     req.DeliveryAddress,
	}, s.now())
	if err != nil {
		return s.writeError(c, err)
	}

	s.log.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.String("product_id", order.ProductID),
		zap.Int("quantity", order.Quantity),
	)
	return c.Status(fiber.StatusCreated).JSON(s.orderResponse(c, order))
}

func (s *Server) cancelOrder(c *fiber.Ctx) error {
	order, err := s.svc.CancelOrder(c.Context(), c.Params("id"), userID(c), s.now())
	if err != nil {
		return s.writeError(c, err)
	}

	s.log.Info("order cancelled",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
	)
	return c.JSON(fiber.Map{"message": "order cancelled", "order": s.orderResponse(c, order)})
}

type adjustStockRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) adjustStock(c *fiber.Ctx) error {
	var req adjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return s.writeError(c, model.Errorf(model.KindInvalidInput, "invalid request body"))
	}

	rec, err := s.svc.AdjustStock(c.Context(), c.Params("productID"), req.Quantity, s.now())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(stockResponse{ProductID: rec.ProductID, Quantity: rec.Quantity, UpdatedAt: rec.UpdatedAt})
}

func (s *Server) ordersBySlot(c *fiber.Ctx) error {
	slot := c.Query("slot")
	if slot == "" {
		return s.writeError(c, model.Errorf(model.KindInvalidInput, "slot parameter is required"))
	}

	orders, err := s.svc.OrdersBySlot(c.Context(), slot)
	if err != nil {
		return s.writeError(c, err)
	}
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, s.orderResponse(c, &orders[i]))
	}
	return c.JSON(out)
}

func (s *Server) topProducts(c *fiber.Ctx) error {
	start, err := time.Parse(dateLayout, c.Query("start"))
	if err != nil {
		return s.writeError(c, model.Errorf(model.KindInvalidInput, "invalid date format, use YYYY-MM-DD"))
	}
	end, err := time.Parse(dateLayout, c.Query("end"))
	if err != nil {
		return s.writeError(c, model.Errorf(model.KindInvalidInput, "invalid date format, use YYYY-MM-DD"))
	}

	sales, err := s.svc.TopProducts(c.Context(), start, end)
	if err != nil {
		return s.writeError(c, err)
	}
	out := make([]salesResponse, 0, len(sales))
	for _, row := range sales {
		out = append(out, salesResponse{
			Product:       productResponse{ID: row.Product.ID, Name: row.Product.Name, Description: row.Product.Description},
			TotalQuantity: row.Total,
		})
	}
	return c.JSON(out)
}
