package geosampa

// Upstream layer names, as published by the municipal geoserver under the
// geoportal workspace.
const (
	LayerLot         = "geoportal:lote_cidadao"
	LayerDistrict    = "geoportal:distrito_municipal"
	LayerZoning      = "geoportal:perimetro_zona_lei_18177_24"
	LayerGeotech     = "geoportal:carta_geotecnica"
	LayerSidewalk    = "geoportal:calcada"
	LayerImprovement = "geoportal:geoconvias_lei_melhoramento_vigente"
	LayerSetback     = "geoportal:geoconvias_faixa_nao_edificavel"
	LayerContingency = "geoportal:GEOSAMPA_area_contaminada_sigac"
	LayerVegetation  = "geoportal:cobertura_vegetal"
)

// HeritageLayers are the landmark protection layers. They are always
// queried together as one union.
var HeritageLayers = []string{
	"geoportal:patrimonio_cultural_bairro_ambiental",
	"geoportal:patrimonio_cultural_bem_tombado",
	"geoportal:patrimonio_cultural_lugar_paisagistico_ambiental",
	"geoportal:patrimonio_cultural_area_envoltoria_CONPRESP",
	"geoportal:patrimonio_cultural_area_envoltoria_CONDEPHAAT",
	"geoportal:patrimonio_cultural_area_envoltoria_IPHAN",
	"geoportal:patrimonio_cultural_acervo_tombado",
}

// Property names carried by the lot layer and its companions.
const (
	PropSector        = "cd_setor_fiscal"
	PropBlock         = "cd_quadra_fiscal"
	PropLot           = "cd_lote"
	PropCheckDigit    = "cd_digito_sql"
	PropArea          = "qt_area_terreno"
	PropStreet        = "nm_logradouro_completo"
	PropDoorNumber    = "cd_numero_porta"
	PropLandUse       = "dc_tipo_uso_imovel"
	PropStreetCode    = "cd_logradouro"
	PropDistrict      = "nm_distrito_municipal"
	PropZoningCode    = "cd_zoneamento_perimetro"
	PropGeotechUnit   = "tx_unidade_geotecnica"
	PropSidewalkWidth = "qt_largura_media_trecho"
)
