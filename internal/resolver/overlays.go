package resolver

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/quadra-hq/quadra/api/internal/geosampa"
	"github.com/quadra-hq/quadra/api/internal/models"
)

// Overlay display names. These double as the keys of the layer-visibility
// registry, matching the map control's checkbox labels.
const (
	OverlayZoning        = "Zoneamento"
	OverlayImprovement   = "Infraestrutura Urbana"
	OverlaySetback       = "Faixa Não Edificável"
	OverlayContamination = "Área Contaminada"
	OverlayVegetation    = "Cobertura Vegetal"
	OverlayHeritage      = "Tombamento"
	OverlayGeotech       = "Unidade Geotécnica"
	OverlaySidewalk      = "Calçada"
	parcelFallbackName   = "Lote"
)

// labelSpec maps one upstream property to its display label. Fallback
// property names cover layers whose schema renamed a column.
type labelSpec struct {
	Label     string
	Prop      string
	Fallbacks []string
	Static    string // fixed value, ignores properties
}

// Label is one display key/value pair of a resolved overlay feature.
type Label struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// overlay is one entry of the precedence list: the display name, the
// upstream layer(s) queried as a union, and the property-to-label mapping
// used only for display, never for resolution.
type overlay struct {
	Name   string
	Layers []string
	Labels []labelSpec
}

// precedence is the fixed probe order. First match wins; this exact order
// is a contract with the analysts, not an implementation detail.
var precedence = []overlay{
	{
		Name:   OverlayZoning,
		Layers: []string{geosampa.LayerZoning},
		Labels: []labelSpec{{Label: "Zoneamento", Prop: geosampa.PropZoningCode}},
	},
	{
		Name:   OverlayImprovement,
		Layers: []string{geosampa.LayerImprovement},
		Labels: []labelSpec{
			{Label: "Tipo", Prop: "tx_descricao_tipo_melhoramento"},
			{Label: "Lei", Prop: "cd_numero_lei_vigente"},
			{Label: "Ano", Prop: "an_lei_melhoramento_vigente"},
		},
	},
	{
		Name:   OverlaySetback,
		Layers: []string{geosampa.LayerSetback},
		Labels: []labelSpec{
			{Label: "Observação", Prop: "tx_obs"},
			{Label: "Área", Prop: "qt_area"},
		},
	},
	{
		Name:   OverlayContamination,
		Layers: []string{geosampa.LayerContingency},
		Labels: []labelSpec{
			{Label: "Situação", Prop: "dc_tipo_situacao"},
			{Label: "Atividade", Prop: "dc_atividade"},
			{Label: "Tipo de Requisição", Prop: "dc_tipo_requisicao"},
			{Label: "Data do Processo", Prop: "dt_atualizacao_processo"},
		},
	},
	{
		Name:   OverlayVegetation,
		Layers: []string{geosampa.LayerVegetation},
		Labels: []labelSpec{
			{Label: "Tipo", Prop: "tx_descricao_categoria_subcategoria"},
			{Label: "Categoria", Prop: "cd_categoria_vegetacao"},
		},
	},
	{
		Name:   OverlayHeritage,
		Layers: geosampa.HeritageLayers,
		Labels: []labelSpec{{Label: "Dados", Static: "Em breve"}},
	},
	{
		Name:   OverlayGeotech,
		Layers: []string{geosampa.LayerGeotech},
		Labels: []labelSpec{
			{Label: "Unidade", Prop: geosampa.PropGeotechUnit},
			{Label: "Descrição", Prop: "ds_unidade"},
		},
	},
	{
		Name:   OverlaySidewalk,
		Layers: []string{geosampa.LayerSidewalk},
		Labels: []labelSpec{
			{Label: "Largura Mín", Prop: "qt_largura_minima_trecho"},
			{Label: "Largura Máx", Prop: "qt_largura_maxima_trecho"},
			{Label: "Largura Média", Prop: geosampa.PropSidewalkWidth},
			{Label: "Decliv. Mín", Prop: "pc_declividade_minima_trecho", Fallbacks: []string{"qt_declividade_minima"}},
			{Label: "Decliv. Máx", Prop: "pc_declividade_maxima_trecho", Fallbacks: []string{"qt_declividade_maxima"}},
			{Label: "Decliv. Média", Prop: "pc_declividade_media_trecho", Fallbacks: []string{"qt_declividade_media"}},
		},
	},
}

// OverlayNames lists the precedence order, primarily for the layer
// visibility API.
func OverlayNames() []string {
	names := make([]string, len(precedence))
	for i, o := range precedence {
		names[i] = o.Name
	}
	return names
}

// formatLabels renders the display key/value pairs of a resolved feature.
// Missing values fall back to the unknown sentinel; numeric values keep
// two decimals, like the map popup always has.
func formatLabels(specs []labelSpec, f *geojson.Feature) []Label {
	labels := make([]Label, 0, len(specs))
	for _, spec := range specs {
		if spec.Static != "" {
			labels = append(labels, Label{Key: spec.Label, Value: spec.Static})
			continue
		}
		labels = append(labels, Label{Key: spec.Label, Value: displayValue(f, spec)})
	}
	return labels
}

func displayValue(f *geojson.Feature, spec labelSpec) string {
	if f == nil || f.Properties == nil {
		return models.Unknown
	}

	keys := append([]string{spec.Prop}, spec.Fallbacks...)
	for _, key := range keys {
		switch v := f.Properties[key].(type) {
		case nil:
			continue
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.2f", v)
		default:
			return fmt.Sprint(v)
		}
	}
	return models.Unknown
}
