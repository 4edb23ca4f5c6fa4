package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/iurnickita/shopledger/internal/model"
	"github.com/iurnickita/shopledger/internal/service"
)

type ProductJSON struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice model.UnitPrice `json:"unitPrice"`
	Currency  string          `json:"currency"`
	Quantity  decimal.Decimal `json:"quantity"`
}

func productJSON(p model.Product) ProductJSON {
	return ProductJSON{ID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice, Currency: p.Currency, Quantity: p.Quantity}
}

func (h *handler) PostProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductJSON
	if err := readJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	product := model.Product{ID: req.ID, Name: req.Name, UnitPrice: req.UnitPrice, Currency: req.Currency, Quantity: req.Quantity}
	if err := h.service.PutProduct(r.Context(), product); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, productJSON(product))
}

func (h *handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	productsJSON := make([]ProductJSON, 0, len(products))
	for _, p := range products {
		productsJSON = append(productsJSON, productJSON(p))
	}
	h.writeJSON(w, http.StatusOK, productsJSON)
}

func (h *handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, productJSON(product))
}

// PatchProductJSONRequest changes only the fields that are sent.
type PatchProductJSONRequest struct {
	Name      *string          `json:"name"`
	UnitPrice *model.UnitPrice `json:"unitPrice"`
	Currency  *string          `json:"currency"`
	Quantity  *decimal.Decimal `json:"quantity"`
}

func (h *handler) PatchProduct(w http.ResponseWriter, r *http.Request) {
	var req PatchProductJSONRequest
	if err := readJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), r.PathValue("id"), service.ProductPatch{
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Currency:  req.Currency,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, productJSON(product))
}

func (h *handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
