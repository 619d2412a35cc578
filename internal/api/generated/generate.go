package generated

//go:generate oapi-codegen --config=oapi-codegen.yaml ../../../api/openapi/media-store.yaml
