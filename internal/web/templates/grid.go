package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/JonMunkholm/gridadmin/internal/grid"
	"github.com/JonMunkholm/gridadmin/internal/session"
	"github.com/a-h/templ"
)

// GridParams feeds GridPage.
type GridParams struct {
	Snapshot    *session.Snapshot
	MaxBulkRows int
}

// GridPage renders one table with its toolbar. Cells are editable only in
// edit mode; the inline script posts edits, pastes and bulk adds to the
// session API and reloads the page with the same session.
func GridPage(p GridParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		snap := p.Snapshot
		h := &html{w: w}

		h.raw(`<section id="grid" data-session="`)
		h.text(snap.ID)
		h.raw(`"><h1>`)
		h.text(snap.Title)
		h.raw(`</h1>`)

		if snap.Error != "" {
			h.render(ctx, ErrorAlert(snap.Error, "", ""))
		}
		h.render(ctx, toolbar(snap))

		if len(snap.Columns) == 0 {
			h.raw(`<p>No data found.</p>`)
		} else {
			h.render(ctx, table(snap))
		}
		if snap.Editing {
			h.render(ctx, bulkForm(p.MaxBulkRows))
		}
		h.raw(`<div id="toast" hidden></div></section><script>`)
		h.raw(gridScript)
		h.raw(`</script>`)
		return h.err
	})
}

func toolbar(snap *session.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<div class="toolbar">`)
		if snap.Editing {
			h.raw(`<button class="primary" data-action="save">Save Changes</button>`)
			h.raw(`<button data-action="cancel">Cancel</button>`)
			h.raw(`<button data-action="reset">Reset All</button>`)
			if len(snap.Columns) > 0 {
				h.raw(`<button data-action="addRow">Add Row</button>`)
			}
		} else {
			h.raw(`<button class="primary" data-action="edit">Edit Mode</button>`)
		}
		h.raw(`<a href="/api/sessions/`)
		h.text(snap.ID)
		h.raw(`/export.csv"><button type="button">Export CSV</button></a>`)
		h.raw(`<a href="/api/sessions/`)
		h.text(snap.ID)
		h.raw(`/export.xlsx"><button type="button">Export XLSX</button></a>`)
		h.raw(`</div>`)
		return h.err
	})
}

func table(snap *session.Snapshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<table><thead><tr>`)
		for _, col := range snap.Columns {
			h.raw(`<th>`)
			h.text(grid.ColumnLabel(col))
			h.raw(`</th>`)
		}
		if snap.Editing {
			h.raw(`<th></th>`)
		}
		h.raw(`</tr></thead><tbody>`)

		editable := strconv.FormatBool(snap.Editing)
		for i, row := range snap.Rows {
			idx := strconv.Itoa(i)
			h.raw(`<tr>`)
			for _, col := range snap.Columns {
				v := row.Get(col)
				h.raw(`<td contenteditable="` + editable + `" data-row="` + idx + `" data-col="`)
				h.text(col)
				h.raw(`" data-value="`)
				h.text(v)
				h.raw(`">`)
				h.text(v)
				h.raw(`</td>`)
			}
			if snap.Editing {
				h.raw(`<td><button data-action="deleteRow" data-row="` + idx + `">Delete</button></td>`)
			}
			h.raw(`</tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}

func bulkForm(maxRows int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<div class="bulk"><label for="bulk-text">Bulk add (tab or comma separated, max `)
		h.text(strconv.Itoa(maxRows))
		h.raw(` rows)</label><textarea id="bulk-text"></textarea>`)
		h.raw(`<p id="bulk-count">0 rows detected</p>`)
		h.raw(`<button class="primary" data-action="bulk">Add Rows</button></div>`)
		return h.err
	})
}

const gridScript = `(function(){
const root=document.getElementById('grid');if(!root)return;
const sid=root.dataset.session;
const api=(path,body,method)=>fetch('/api/sessions/'+sid+path,{method:method||'POST',
 headers:{'Content-Type':'application/json','Accept':'application/json'},
 body:body?JSON.stringify(body):undefined}).then(async r=>{
 const j=await r.json().catch(()=>({}));if(!r.ok)throw j;return j});
const toast=m=>{const t=document.getElementById('toast');t.textContent=m;t.hidden=false;setTimeout(()=>{t.hidden=true},4000)};
const fail=e=>toast((e&&e.message)||'Request failed');
const reload=m=>{if(m)sessionStorage.setItem('toast',m);location.replace(location.pathname+'?session='+encodeURIComponent(sid))};
root.querySelectorAll('[data-action]').forEach(b=>b.addEventListener('click',()=>{
 const a=b.dataset.action;let p;
 if(a==='addRow')p=api('/rows',{count:1});
 else if(a==='deleteRow')p=api('/rows/'+b.dataset.row,null,'DELETE');
 else if(a==='bulk')p=api('/bulk',{text:document.getElementById('bulk-text').value});
 else p=api('/'+a);
 p.then(r=>reload(r&&r.summary),fail)}));
root.querySelectorAll('td[contenteditable=true]').forEach(td=>{
 td.addEventListener('blur',()=>{if(td.textContent===td.dataset.value)return;
  api('/cells',{row:+td.dataset.row,column:td.dataset.col,value:td.textContent}).then(()=>{td.dataset.value=td.textContent},fail)});
 td.addEventListener('paste',e=>{e.preventDefault();
  const text=(e.clipboardData||window.clipboardData).getData('text');
  api('/paste',{row:+td.dataset.row,column:td.dataset.col,text:text}).then(r=>reload(r.summary),fail)})});
const bt=document.getElementById('bulk-text');
if(bt)bt.addEventListener('input',()=>api('/bulk/preview',{text:bt.value}).then(p=>{
 document.getElementById('bulk-count').textContent=p.rows+' rows detected'+(p.tooMany?' (limit '+p.limit+')':'')}));
const m=sessionStorage.getItem('toast');if(m){sessionStorage.removeItem('toast');toast(m)}
})();`
