package controllers

import (
	"io"
	"net/http"
	"os"

	"github.com/tollnet/interop-backoffice/api/responses"
	"github.com/tollnet/interop-backoffice/api/validators"
	"github.com/tollnet/interop-backoffice/internal/operators"
	"github.com/tollnet/interop-backoffice/internal/stations"
	"github.com/tollnet/interop-backoffice/pkg/config"
	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
	"github.com/tollnet/interop-backoffice/pkg/logger"
)

// uploadMemoryLimit bounds the in-memory portion of multipart manifests.
const uploadMemoryLimit = 16 << 20

func HealthCheck(service stations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		result, err := service.HealthCheck(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

// ResetStations reloads the station table from an uploaded CSV or, when the
// request has no upload, from the configured manifest path.
func ResetStations(service stations.Service, cfg config.StationsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		manifest, cleanup, err := manifestReader(r, cfg.ManifestPath)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		defer cleanup()

		result, err := service.ResetStations(ctx, manifest)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

func ResetPasses(service stations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		result, err := service.ResetPasses(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

func AddPasses(service stations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		manifest, cleanup, err := manifestReader(r, "")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		defer cleanup()

		result, err := service.AddPasses(ctx, manifest)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, result)
	}
}

type usermodRequest struct {
	ID       string `json:"id" validate:"required,uppercase"`
	Name     string `json:"name"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password"`
	Admin    bool   `json:"admin"`
}

func Usermod(service operators.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body usermodRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		account, err := service.Upsert(ctx, body.ID, body.Name, body.Username, body.Password, body.Admin)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, account)
	}
}

func Users(service operators.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accounts, err := service.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteResult(w, r, accounts)
	}
}

// manifestReader hands back the uploaded "file" part when present, otherwise
// the fallback path. The cleanup func closes whichever source was opened.
func manifestReader(r *http.Request, fallbackPath string) (manifest io.Reader, cleanup func(), err error) {
	if err := r.ParseMultipartForm(uploadMemoryLimit); err == nil {
		if file, _, ferr := r.FormFile("file"); ferr == nil {
			return file, func() { file.Close() }, nil
		}
	}
	if fallbackPath == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "a csv upload is required")
	}

	f, err := os.Open(fallbackPath)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "station manifest unavailable")
	}
	return f, func() { f.Close() }, nil
}
