package apis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brnbtech770/blocktrust/internal/common/httpx"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/db/models"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
	"github.com/brnbtech770/blocktrust/pkg/api"
)

// createEntity handles POST /entities: onboard an entity with a pending
// certificate.
func createEntity(r *http.Request) (*httpx.Response, error) {
	req := &api.CreateEntityRequest{}
	if err := decodeRequest(r, req); err != nil {
		return nil, err
	}

	entity := &models.Entity{
		Type:        trustcommon.EntityType(req.Type),
		LegalName:   req.LegalName,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Website:     req.Website,
		Description: req.Description,
	}

	cert, err := newRegistry(r).CreateEntity(r.Context(), entity)
	if err != nil {
		return nil, err
	}

	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   "/entities/" + entity.EntityID.String(),
		Response: &api.CreateEntityRsp{
			Entity:      *entityRsp(entity),
			Certificate: *certificateRsp(cert),
		},
	}, nil
}

// getEntity handles GET /entities/{entityId}.
func getEntity(r *http.Request) (*httpx.Response, error) {
	entityID, err := parseUUID(chi.URLParam(r, "entityId"), "entity id")
	if err != nil {
		return nil, err
	}

	entity, aerr := db.DB(r.Context()).GetEntity(r.Context(), entityID)
	if aerr != nil {
		return nil, aerr
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   entityRsp(entity),
	}, nil
}

// listEntities handles GET /entities.
func listEntities(r *http.Request) (*httpx.Response, error) {
	entities, err := db.DB(r.Context()).ListEntities(r.Context())
	if err != nil {
		return nil, err
	}

	rsp := make([]*api.EntityRsp, 0, len(entities))
	for _, entity := range entities {
		rsp = append(rsp, entityRsp(entity))
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   rsp,
	}, nil
}

// listEntityCertificates handles GET /entities/{entityId}/certificates.
func listEntityCertificates(r *http.Request) (*httpx.Response, error) {
	entityID, err := parseUUID(chi.URLParam(r, "entityId"), "entity id")
	if err != nil {
		return nil, err
	}

	certs, aerr := db.DB(r.Context()).ListCertificatesByEntity(r.Context(), entityID)
	if aerr != nil {
		return nil, aerr
	}

	rsp := make([]*api.CertificateRsp, 0, len(certs))
	for _, cert := range certs {
		rsp = append(rsp, certificateRsp(cert))
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   rsp,
	}, nil
}
