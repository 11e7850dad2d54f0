package investjp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailPage = `<!DOCTYPE html>
<html><body>
<h1>ビックカメラ(3048) 株主優待</h1>
<span id="code">3048</span>
<span class="taishaku">貸借</span>
<span class="seigen2">注意喚起</span>
<table>
<tr><th>優待権利日</th><td>2月末日・8月末日</td></tr>
<tr><th>売買単位</th><td id="lot">100株</td></tr>
</table>
<div class="yuutai-body">
<h3>買物優待券</h3>
<p>自社店舗で使える買物優待券を贈呈</p>
<table>
<tr><th>100株以上</th><td>1,000円相当の買物優待券</td></tr>
<tr><th>500株以上</th><td>2,000円相当の買物優待券</td></tr>
</table>
</div>
<h3>配当金</h3>
<table>
<tr><td>2026年8月期（予）</td><td>15円</td></tr>
<tr><td>2025年8月期</td><td>12.5円</td></tr>
</table>
<table id="jsf_list">
<tbody>
<tr>
<td><div class="d-none d-md-table-cell">2025/02/26</div><div>02/26</div></td>
<td>2.4</td><td>9.6</td><td>3</td><td>1,200</td><td>x</td>
<td>54,300</td><td>1,432</td><td>12</td><td>12.5</td>
<td><span class="seigen1">注意</span></td>
</tr>
<tr>
<td><div class="d-none d-md-table-cell">2024/08/28</div><div>08/28</div></td>
<td></td><td></td><td>1</td><td>800</td><td>x</td>
<td>33,000</td><td>1,388</td><td>5</td><td>12</td>
<td></td>
</tr>
</tbody>
</table>
</body></html>`

func TestParseDetailPage(t *testing.T) {
	stock, err := Parse(strings.NewReader(detailPage))
	require.NoError(t, err)

	assert.Equal(t, "3048", stock.Code)
	assert.Equal(t, "ビックカメラ", stock.Name)
	assert.Equal(t, 100, stock.Lot)
	assert.Equal(t, 2, stock.SettlementMonth)
	assert.True(t, stock.IsTaishaku)
	assert.Equal(t, "注意喚起", stock.Restriction)
}

func TestParseBorrowCostHistory(t *testing.T) {
	stock, err := Parse(strings.NewReader(detailPage))
	require.NoError(t, err)

	require.Len(t, stock.BorrowCosts, 2)

	first := stock.BorrowCosts[0]
	assert.Equal(t, "2025/02/26", first.Date)
	assert.Equal(t, 2.4, first.Cost)
	assert.Equal(t, 9.6, first.MaxRate)
	assert.Equal(t, 3, first.Days)
	assert.Equal(t, 1432.0, first.ClosePrice)
	assert.Equal(t, 12.5, first.Dividend)
	assert.Equal(t, "注意", first.Restriction)

	// 空セルは0、制限なしは空文字
	second := stock.BorrowCosts[1]
	assert.Equal(t, 0.0, second.Cost)
	assert.Equal(t, "", second.Restriction)
}

func TestParseDividendHistory(t *testing.T) {
	stock, err := Parse(strings.NewReader(detailPage))
	require.NoError(t, err)

	require.Len(t, stock.Dividends, 2)
	assert.Equal(t, "2026年8月期（予）", stock.Dividends[0].Period)
	assert.Equal(t, 15.0, stock.Dividends[0].Amount)
	assert.True(t, stock.Dividends[0].IsForecast)
	assert.Equal(t, 12.5, stock.Dividends[1].Amount)
	assert.False(t, stock.Dividends[1].IsForecast)
}

func TestParseBenefitTiers(t *testing.T) {
	stock, err := Parse(strings.NewReader(detailPage))
	require.NoError(t, err)

	assert.Equal(t, "買物優待券", stock.Benefit.Title)
	assert.Equal(t, "自社店舗で使える買物優待券を贈呈", stock.Benefit.Content)

	require.Len(t, stock.Benefit.Tiers, 2)
	assert.Equal(t, 100, stock.Benefit.Tiers[0].Shares)
	assert.Equal(t, 1000, stock.Benefit.Tiers[0].Value)
	assert.Equal(t, 500, stock.Benefit.Tiers[1].Shares)

	min, ok := stock.Benefit.MinTier()
	require.True(t, ok)
	assert.Equal(t, 100, min.Shares)
}

func TestParseHistoryConversion(t *testing.T) {
	stock, err := Parse(strings.NewReader(detailPage))
	require.NoError(t, err)

	hist := stock.History()
	assert.Equal(t, "3048", hist.Code)

	closePrice, ok := hist.LatestClosePrice()
	require.True(t, ok)
	assert.Equal(t, 1432.0, closePrice)

	// 予想しかない場合ではないので実績12.5円
	dividend, ok := hist.LatestDividend()
	require.True(t, ok)
	assert.Equal(t, 12.5, dividend)
}

func TestParseNonDetailPage(t *testing.T) {
	_, err := Parse(strings.NewReader(`<html><body><h1>404</h1></body></html>`))
	assert.Error(t, err)
}

func TestExtractStockCodes(t *testing.T) {
	html := `
	<a href="/yuutai/detail/3048">ビックカメラ</a>
	<a href="/yuutai/detail/9861">吉野家HD</a>
	<a href="/yuutai/detail/3048">ビックカメラ(再掲)</a>
	<a href="/yuutai/index/3">3月</a>`

	codes := ExtractStockCodes(html)
	assert.Equal(t, []string{"3048", "9861"}, codes)
}
