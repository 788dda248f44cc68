package community

import "fmt"

type Asset struct {
	AppId      uint32 `json:"appid"`
	ContextId  string `json:"contextid"`
	AssetId    string `json:"assetid"`
	ClassId    string `json:"classid"`
	InstanceId string `json:"instanceid"`
	Amount     string `json:"amount"`
	Missing    bool   `json:"missing,omitempty"`
}

// DescriptionKey identifies the description shared by every asset of the
// same class and instance.
func (a Asset) DescriptionKey() string {
	return descriptionKey(a.AppId, a.ClassId, a.InstanceId)
}

type Description struct {
	AppId          uint32 `json:"appid"`
	ClassId        string `json:"classid"`
	InstanceId     string `json:"instanceid"`
	IconUrl        string `json:"icon_url"`
	IconUrlLarge   string `json:"icon_url_large"`
	Tradable       int    `json:"tradable"`
	Marketable     int    `json:"marketable"`
	Name           string `json:"name"`
	NameColor      string `json:"name_color"`
	Type           string `json:"type"`
	MarketName     string `json:"market_name"`
	MarketHashName string `json:"market_hash_name"`
	Tags           []Tag  `json:"tags"`
}

func (d Description) Key() string {
	return descriptionKey(d.AppId, d.ClassId, d.InstanceId)
}

type Tag struct {
	Category              string `json:"category"`
	InternalName          string `json:"internal_name"`
	LocalizedCategoryName string `json:"localized_category_name"`
	LocalizedTagName      string `json:"localized_tag_name"`
	Color                 string `json:"color,omitempty"`
}

func descriptionKey(appId uint32, classId, instanceId string) string {
	if instanceId == "" {
		instanceId = "0"
	}
	return fmt.Sprintf("%d_%s_%s", appId, classId, instanceId)
}
